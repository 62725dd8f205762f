package graph

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/mcoot/friendfinder/internal/api/apierr"
	"github.com/mcoot/friendfinder/internal/api/response"
	"github.com/mcoot/friendfinder/internal/services/access"
)

// Request is a GraphQL request as sent over HTTP
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves a schema over HTTP. It accepts POST with a JSON body and
// GET with query, variables and operationName URL parameters.
type Handler struct {
	schema graphql.Schema
}

// NewHandler creates a new GraphQL handler
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// ServeHTTP executes the request with the request context, which carries the principal
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if selectsIntrospection(req.Query) {
		if _, err := access.Authorize(r.Context(), access.Introspect); err != nil {
			_, apiError := apierr.Classify(err)
			gqlErr := &Error{Code: apiError.Code, Message: apiError.Message}
			response.JSON(w, http.StatusOK, &graphql.Result{
				Errors: []gqlerrors.FormattedError{{Message: gqlErr.Message, Extensions: gqlErr.Extensions()}},
			})
			return
		}
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	response.JSON(w, http.StatusOK, result)
}

func parseRequest(r *http.Request) (Request, error) {
	var req Request
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, apierr.NewInvalidRequestError("variables must be a JSON object")
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apierr.NewInvalidRequestError("invalid request body")
	}

	if req.Query == "" {
		return req, apierr.NewInvalidRequestError("query is required")
	}
	return req, nil
}
