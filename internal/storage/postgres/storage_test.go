package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/friendfinder/internal/storage/storagetest"
)

// StorageSuite runs against a live PostgreSQL named by DATABASE_URL
type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run the postgres storage tests")
	}

	store, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	suite.Run(t, &StorageSuite{storage: store})
}

func (s *StorageSuite) SetupTest() {
	s.Ctx = context.Background()
	_, err := s.storage.pool.Exec(s.Ctx, `TRUNCATE friends, positions`)
	s.Require().NoError(err)
	s.Store = s.storage
}

func (s *StorageSuite) TestMigrateIsIdempotent() {
	s.NoError(s.storage.Migrate(s.Ctx))
}
