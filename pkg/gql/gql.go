// Package gql wraps graphql-go with the schema and HTTP plumbing for the
// read-only marketplace query endpoint.
//
// The app layer builds the root query object (listings, categories) and
// mounts the executor:
//
//	schema, _ := gql.NewSchema(rootQuery)
//	router.Post("/api/gql", "gql.query", gql.Handler(schema))
package gql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

// NewSchema wraps the query root into an executable schema. The API is
// read-only, so there is no mutation root.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the standard GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler returns an http.HandlerFunc that executes GraphQL requests
// against schema. POST bodies carry the standard {query, variables} JSON;
// GET requests may pass ?query= for quick inspection.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request

		switch r.Method {
		case http.MethodGet:
			req.Query = r.URL.Query().Get("query")
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "Invalid GraphQL request body")
				return
			}
		default:
			response.Error(w, http.StatusMethodNotAllowed, "Use GET or POST")
			return
		}

		if req.Query == "" {
			response.Error(w, http.StatusBadRequest, "Query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		if result.HasErrors() {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
