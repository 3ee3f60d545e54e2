package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// writeDomainError renders err through ErrDomain, the single place every
// handler in this package maps a domain error category to an HTTP response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	render.Render(w, r, ErrDomain(err))
}

// writeJSON renders v as the 200 OK response body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	render.JSON(w, r, v)
}

// parseSchemaID extracts the {schemaID} URL param as an ids.SchemaID,
// rendering a 400 response on a malformed value. Schema ids are dense and
// scoped to one class, so they ride along the {classID} route rather than
// getting their own context-extraction middleware.
func parseSchemaID(w http.ResponseWriter, r *http.Request) (ids.SchemaID, bool) {
	raw := chi.URLParam(r, "schemaID")
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("invalid schemaID %q: %w", raw, err)))
		return 0, false
	}
	return ids.SchemaID(n), true
}

// parsePropertyID extracts the {propertyID} URL param as an ids.PropertyID.
func parsePropertyID(w http.ResponseWriter, r *http.Request) (ids.PropertyID, bool) {
	raw := chi.URLParam(r, "propertyID")
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("invalid propertyID %q: %w", raw, err)))
		return 0, false
	}
	return ids.PropertyID(n), true
}
