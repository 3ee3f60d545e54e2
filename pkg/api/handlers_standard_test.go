package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	ID        ids.ClassID
	CreatedAt time.Time
	Name      string
}

type testResp struct {
	ID        ids.ClassID `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
}

func testEntityToResp(e *testEntity) *testResp {
	return &testResp{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt}
}

type testCreateReq struct {
	Name string `json:"name"`
}

type testActionReq struct {
	Name string `json:"name"`
}

func requestWithClassID(method, url string, body []byte, id string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("classID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestList_Standard(t *testing.T) {
	testCases := []struct {
		name           string
		queryParams    string
		lister         func(context.Context, *domain.PageReq) (*domain.PageRes[testEntity], error)
		expectedStatus int
		expectedItems  int
	}{
		{
			name:        "success",
			queryParams: "?page=1&pageSize=10",
			lister: func(ctx context.Context, req *domain.PageReq) (*domain.PageRes[testEntity], error) {
				return &domain.PageRes[testEntity]{
					Items:       []testEntity{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
					TotalItems:  2,
					CurrentPage: 1,
					TotalPages:  1,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedItems:  2,
		},
		{
			name:        "invalid page",
			queryParams: "?page=bogus",
			lister: func(ctx context.Context, req *domain.PageReq) (*domain.PageRes[testEntity], error) {
				t.Fatal("lister must not be called when page parsing fails")
				return nil, nil
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "lister error",
			queryParams: "?page=1",
			lister: func(ctx context.Context, req *domain.PageReq) (*domain.PageRes[testEntity], error) {
				return nil, fmt.Errorf("store unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := List(tc.lister, testEntityToResp)
			req := httptest.NewRequest("GET", "/test"+tc.queryParams, nil)
			w := httptest.NewRecorder()
			handler(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				var resp PageResponse[testResp]
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Len(t, resp.Items, tc.expectedItems)
			}
		})
	}
}

func TestGet_Standard(t *testing.T) {
	testCases := []struct {
		name           string
		getter         func(context.Context, ids.ClassID) (*testEntity, error)
		expectedStatus int
	}{
		{
			name: "success",
			getter: func(ctx context.Context, id ids.ClassID) (*testEntity, error) {
				return &testEntity{ID: id, Name: "video"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			getter: func(ctx context.Context, id ids.ClassID) (*testEntity, error) {
				return nil, domain.NewNotFoundErrorf("class %d not found", id)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Get(middlewares.MustGetClassID, tc.getter, testEntityToResp)
			req := requestWithClassID("GET", "/classes/1", nil, "1")

			w := httptest.NewRecorder()
			middlewares.ClassID(handler).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				var resp testResp
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, ids.ClassID(1), resp.ID)
				assert.Equal(t, "video", resp.Name)
			}
		})
	}
}

func TestCreate_Standard(t *testing.T) {
	testCases := []struct {
		name           string
		createFunc     func(context.Context, testCreateReq) (*testEntity, error)
		expectedStatus int
	}{
		{
			name: "success",
			createFunc: func(ctx context.Context, req testCreateReq) (*testEntity, error) {
				return &testEntity{ID: 1, Name: req.Name}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "validation error",
			createFunc: func(ctx context.Context, req testCreateReq) (*testEntity, error) {
				return nil, domain.NewInvalidInputErrorf("name required")
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Create(tc.createFunc, testEntityToResp)
			body, err := json.Marshal(testCreateReq{Name: "video"})
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/classes", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			middlewares.DecodeBody[testCreateReq]()(handler).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestAction_Standard(t *testing.T) {
	handler := Action(middlewares.MustGetClassID, func(ctx context.Context, id ids.ClassID, req testActionReq) (*testEntity, error) {
		if req.Name == "" {
			return nil, domain.NewInvalidInputErrorf("name required")
		}
		return &testEntity{ID: id, Name: req.Name}, nil
	}, testEntityToResp)

	body, err := json.Marshal(testActionReq{Name: "renamed"})
	require.NoError(t, err)
	req := requestWithClassID("PATCH", "/classes/1", body, "1")

	w := httptest.NewRecorder()
	middlewares.ClassID(middlewares.DecodeBody[testActionReq]()(handler)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "renamed", resp.Name)
}

func TestActionWithoutBody_Standard(t *testing.T) {
	handler := ActionWithoutBody(middlewares.MustGetClassID, func(ctx context.Context, id ids.ClassID) (*testEntity, error) {
		return &testEntity{ID: id, Name: "touched"}, nil
	}, testEntityToResp)

	req := requestWithClassID("POST", "/classes/1/touch", nil, "1")
	w := httptest.NewRecorder()
	middlewares.ClassID(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommand_Standard(t *testing.T) {
	testCases := []struct {
		name           string
		commandFunc    func(context.Context, ids.ClassID, testActionReq) error
		expectedStatus int
	}{
		{
			name: "success",
			commandFunc: func(ctx context.Context, id ids.ClassID, req testActionReq) error {
				return nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "consistency error",
			commandFunc: func(ctx context.Context, id ids.ClassID, req testActionReq) error {
				return domain.NewConsistencyErrorf("entity %d still referenced", id)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Command(middlewares.MustGetClassID, tc.commandFunc)
			body, err := json.Marshal(testActionReq{Name: "x"})
			require.NoError(t, err)
			req := requestWithClassID("POST", "/classes/1/archive", body, "1")

			w := httptest.NewRecorder()
			middlewares.ClassID(middlewares.DecodeBody[testActionReq]()(handler)).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusNoContent {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestCommandWithoutBody_Standard(t *testing.T) {
	handler := CommandWithoutBody(middlewares.MustGetClassID, func(ctx context.Context, id ids.ClassID) error {
		return nil
	})

	req := requestWithClassID("DELETE", "/classes/1", nil, "1")
	w := httptest.NewRecorder()
	middlewares.ClassID(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
