package cli

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Basic     string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("FRIENDCTL_SERVER", "http://localhost:3333"),
		Token:     os.Getenv("FRIENDCTL_TOKEN"),
		TokenFile: getEnvOrDefault("FRIENDCTL_TOKEN_FILE", defaultTokenFile()),
		Basic:     os.Getenv("FRIENDCTL_BASIC"),
		Output:    "text",
	}
}

// Authorization returns the Authorization header value. Basic credentials win over a token.
func (c *Config) Authorization() string {
	if c.Basic != "" {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Basic))
	}
	if c.Token != "" {
		return "Bearer " + c.Token
	}
	return ""
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".friendctl/token"
	}
	return filepath.Join(home, ".friendctl", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
