package api

import (
	"log/slog"
	"net/http"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/go-chi/render"
)

// ErrRes represents an error response
type ErrRes struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message
}

// ValidationErrRes represents a validation error response with detailed errors
type ValidationErrRes struct {
	Err            error                         `json:"-"` // low-level runtime error
	HTTPStatusCode int                           `json:"-"` // http response status code
	StatusText     string                        `json:"status"`
	Valid          bool                          `json:"valid"`
	Errors         []domain.ValidationErrorDetail `json:"errors"`
}

// ErrDomain maps a domain.Category to the HTTP response its error category
// means, per the closed error enumeration every engine operation surfaces.
func ErrDomain(err error) render.Renderer {
	slog.Error("API domain error", "error", err)
	if validationErr, ok := err.(domain.ValidationError); ok {
		return ErrValidation(validationErr)
	}
	switch domain.CategoryOf(err) {
	case domain.CategoryExistence:
		return ErrNotFound()
	case domain.CategoryAuthorization:
		return ErrUnauthorized(err)
	case domain.CategoryQuota:
		return ErrQuota(err)
	case domain.CategoryValidation:
		return ErrInvalidRequest(err)
	case domain.CategoryConsistency:
		return ErrConflict(err)
	default:
		return ErrInternal(err)
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrRes{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound() render.Renderer {
	return &ErrRes{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found",
	}
}

func ErrQuota(err error) render.Renderer {
	return &ErrRes{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Limit reached",
		ErrorText:      err.Error(),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrRes{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Consistency violation",
		ErrorText:      err.Error(),
	}
}

func ErrInternal(err error) render.Renderer {
	return &ErrRes{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthenticated() render.Renderer {
	return &ErrRes{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		ErrorText:      "Authentication required",
	}
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrRes{
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Forbidden",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err domain.ValidationError) render.Renderer {
	return &ValidationErrRes{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Validation failed",
		Valid:          false,
		Errors:         err.Errors,
	}
}

func (e *ErrRes) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.HTTPStatusCode)
	return nil
}

func (e *ValidationErrRes) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.HTTPStatusCode)
	return nil
}
