package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type contextKey string

const (
	classIDContextKey        = contextKey("classID")
	entityIDContextKey       = contextKey("entityID")
	curatorGroupIDContextKey = contextKey("curatorGroupID")
	decodedBodyContextKey    = contextKey("decodedBody")
)

// idParam extracts a decimal uint64 URL parameter and renders a 400 response
// on a malformed value. Each aggregate has its own id namespace, so callers
// pick the chi param name and the typed constructor to apply.
func idParam[T ~uint64](w http.ResponseWriter, r *http.Request, param string, wrap func(uint64) T) (T, bool) {
	raw := chi.URLParam(r, param)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		render.Render(w, r, response.ErrInvalidRequest(fmt.Errorf("invalid %s %q: %w", param, raw, err)))
		return 0, false
	}
	return wrap(n), true
}

// ClassID extracts a ids.ClassID from the {classID} URL param.
func ClassID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "classID", ids.ClassID)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), classIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MustGetClassID retrieves the ids.ClassID stored by the ClassID middleware.
func MustGetClassID(ctx context.Context) ids.ClassID {
	id, ok := ctx.Value(classIDContextKey).(ids.ClassID)
	if !ok {
		panic("class id not found in request context")
	}
	return id
}

// EntityID extracts a ids.EntityID from the {entityID} URL param.
func EntityID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "entityID", ids.EntityID)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), entityIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MustGetEntityID retrieves the ids.EntityID stored by the EntityID middleware.
func MustGetEntityID(ctx context.Context) ids.EntityID {
	id, ok := ctx.Value(entityIDContextKey).(ids.EntityID)
	if !ok {
		panic("entity id not found in request context")
	}
	return id
}

// CuratorGroupID extracts a ids.CuratorGroupID from the {groupID} URL param.
func CuratorGroupID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "groupID", ids.CuratorGroupID)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), curatorGroupIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MustGetCuratorGroupID retrieves the ids.CuratorGroupID stored by the CuratorGroupID middleware.
func MustGetCuratorGroupID(ctx context.Context) ids.CuratorGroupID {
	id, ok := ctx.Value(curatorGroupIDContextKey).(ids.CuratorGroupID)
	if !ok {
		panic("curator group id not found in request context")
	}
	return id
}

// DecodeBody is middleware that decodes the request body into a struct
// and stores it in the request context for later middlewares and handlers
func DecodeBody[T any]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a new instance of the target type
			v := new(T)

			// Decode the request body into the target
			if err := render.Decode(r, v); err != nil {
				render.Render(w, r, response.ErrInvalidRequest(err))
				return
			}

			// Store the decoded body in the context
			ctx := context.WithValue(r.Context(), decodedBodyContextKey, v)

			// Call the next handler with the updated context
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MustGetBody retrieves and casts the decoded body to a specific type
func MustGetBody[T any](ctx context.Context) T {
	var zero T
	body := ctx.Value(decodedBodyContextKey)
	if body == nil {
		panic("no decoded body found in context")
	}

	// First try direct type assertion
	if typed, ok := body.(T); ok {
		return typed
	}

	// If that fails, try pointer dereferencing (DecodeBody stores *T)
	if ptr, ok := body.(*T); ok {
		return *ptr
	}

	panic(fmt.Sprintf("expected body of type %T or *%T, got %T", zero, zero, body))
}
