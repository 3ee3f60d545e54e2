package api

import (
	"context"
	"net/http"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/go-chi/render"
)

// List handles standard paginated list operations against a lister closure.
func List[T any, R any](lister func(context.Context, *domain.PageReq) (*domain.PageRes[T], error), toResp func(*T) *R) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pag, err := ParsePageRequest(r)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		result, err := lister(r.Context(), pag)
		if err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		render.JSON(w, r, NewPageResponse(result, toResp))
	}
}

// Get handles standard get operations: idFunc reads the typed id a prior
// id-extraction middleware stored in context, getter loads the entity.
func Get[ID any, T any, R any](idFunc func(context.Context) ID, getter func(context.Context, ID) (*T, error), toResp func(*T) *R) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFunc(r.Context())

		entity, err := getter(r.Context(), id)
		if err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		render.JSON(w, r, toResp(entity))
	}
}

// Create handles standard create operations that take a decoded request body
// and return the created entity.
func Create[Req any, T any, R any](
	createFunc func(context.Context, Req) (*T, error),
	toResp func(*T) *R,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middlewares.MustGetBody[Req](r.Context())

		entity, err := createFunc(r.Context(), req)
		if err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, toResp(entity))
	}
}

// Action handles operations keyed by a typed id plus a decoded request body,
// returning the mutated entity.
func Action[ID any, Req any, T any, R any](
	idFunc func(context.Context) ID,
	actionFunc func(context.Context, ID, Req) (*T, error),
	toResp func(*T) *R,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFunc(r.Context())
		req := middlewares.MustGetBody[Req](r.Context())

		entity, err := actionFunc(r.Context(), id, req)
		if err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		render.JSON(w, r, toResp(entity))
	}
}

// ActionWithoutBody handles operations keyed only by a typed id, returning
// the mutated entity.
func ActionWithoutBody[ID any, T any, R any](
	idFunc func(context.Context) ID,
	actionFunc func(context.Context, ID) (*T, error),
	toResp func(*T) *R,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFunc(r.Context())

		entity, err := actionFunc(r.Context(), id)
		if err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		render.JSON(w, r, toResp(entity))
	}
}

// Command handles operations keyed by a typed id plus a decoded request body
// that return no entity.
func Command[ID any, Req any](
	idFunc func(context.Context) ID,
	commandFunc func(context.Context, ID, Req) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFunc(r.Context())
		req := middlewares.MustGetBody[Req](r.Context())

		if err := commandFunc(r.Context(), id, req); err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CommandWithoutBody handles operations keyed only by a typed id that return
// no entity.
func CommandWithoutBody[ID any](
	idFunc func(context.Context) ID,
	commandFunc func(context.Context, ID) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFunc(r.Context())

		if err := commandFunc(r.Context(), id); err != nil {
			render.Render(w, r, ErrDomain(err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
