package graph

import (
	"log/slog"

	"github.com/mcoot/friendfinder/internal/api/apierr"
	"github.com/mcoot/friendfinder/internal/services/access"
)

// Error is returned from resolvers. graphql-go copies Extensions into
// errors[].extensions, so clients get the same codes as the REST API.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions implements gqlerrors.ExtendedError
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": e.Code}
}

// toError classifies err like the REST API does. Internal failures are
// logged here and reach the client only as a generic message.
func toError(logger *slog.Logger, op access.Operation, err error) error {
	_, apiError := apierr.Classify(err)
	if apiError.Code == apierr.CodeInternalError {
		logger.Error("resolver failed",
			slog.String("operation", op.Name),
			slog.String("error", err.Error()),
		)
	}
	return &Error{Code: apiError.Code, Message: apiError.Message}
}
