package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/database"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadClassCtx() context.Context {
	return auth.WithIdentity(context.Background(), leadIdentity())
}

func newClassHandlers(store domain.Store) *ClassHandlers {
	return NewClassHandlers(domain.NewClassCommander(store, domain.DefaultLimits()), store.ClassRepo(), permissiveAuthorizer{})
}

func classRequestWithID(method, url string, body []byte, classID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("classID", classID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestClassHandlers_Create(t *testing.T) {
	store := database.NewMemStore()
	h := newClassHandlers(store)

	body, err := json.Marshal(CreateClassReq{
		Name: "video", MaximumEntitiesCount: 100, PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithIdentity(req.Context(), leadIdentity()))
	w := httptest.NewRecorder()
	middlewares.DecodeBody[CreateClassReq]()(h.Create()).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp ClassResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "video", resp.Name)
	assert.EqualValues(t, 100, resp.MaximumEntitiesCount)
}

func TestClassHandlers_Get(t *testing.T) {
	store := database.NewMemStore()
	classCmd := domain.NewClassCommander(store, domain.DefaultLimits())
	created, err := classCmd.Create(leadClassCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 100, PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)

	h := newClassHandlers(store)
	req := classRequestWithID("GET", "/classes/1", nil, fmt.Sprintf("%d", uint64(created.ID)))
	w := httptest.NewRecorder()
	middlewares.ClassID(h.Get()).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ClassResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
}

func TestClassHandlers_Get_NotFound(t *testing.T) {
	store := database.NewMemStore()
	h := newClassHandlers(store)

	req := classRequestWithID("GET", "/classes/999", nil, "999")
	w := httptest.NewRecorder()
	middlewares.ClassID(h.Get()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassHandlers_AddSchema(t *testing.T) {
	store := database.NewMemStore()
	classCmd := domain.NewClassCommander(store, domain.DefaultLimits())
	created, err := classCmd.Create(leadClassCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 100, PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)

	h := newClassHandlers(store)
	body, err := json.Marshal(AddSchemaReq{
		NewProperties: []NewPropertyReq{
			{Name: "title", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 32}, Required: true},
		},
	})
	require.NoError(t, err)

	req := classRequestWithID("POST", "/classes/1/schemas", body, fmt.Sprintf("%d", uint64(created.ID)))
	req = req.WithContext(auth.WithIdentity(req.Context(), leadIdentity()))
	w := httptest.NewRecorder()
	middlewares.ClassID(middlewares.DecodeBody[AddSchemaReq]()(h.AddSchema())).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ClassResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Schemas, 1)
}

func TestClassHandlers_UpdateSchemaStatus(t *testing.T) {
	store := database.NewMemStore()
	classCmd := domain.NewClassCommander(store, domain.DefaultLimits())
	created, err := classCmd.Create(leadClassCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 100, PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)
	_, err = classCmd.AddSchema(leadClassCtx(), created.ID, domain.AddSchemaParams{
		NewProperties: []domain.NewPropertyParams{
			{Name: "title", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 32}},
		},
	})
	require.NoError(t, err)

	h := newClassHandlers(store)
	body, err := json.Marshal(UpdateSchemaStatusReq{Active: false})
	require.NoError(t, err)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("classID", fmt.Sprintf("%d", uint64(created.ID)))
	rctx.URLParams.Add("schemaID", "0")
	req := httptest.NewRequest("PATCH", "/classes/1/schemas/0", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = req.WithContext(auth.WithIdentity(req.Context(), leadIdentity()))

	w := httptest.NewRecorder()
	middlewares.ClassID(middlewares.DecodeBody[UpdateSchemaStatusReq]()(h.UpdateSchemaStatus())).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ClassResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Schemas, 1)
	assert.False(t, resp.Schemas[0].IsActive)
}

func TestClassHandlers_Routes_EnforcesAuthorization(t *testing.T) {
	store := database.NewMemStore()
	h := NewClassHandlers(domain.NewClassCommander(store, domain.DefaultLimits()), store.ClassRepo(), denyingAuthorizer{})

	r := chi.NewRouter()
	r.Route("/classes", func(r chi.Router) { h.Routes(r) })

	body, err := json.Marshal(CreateClassReq{Name: "video"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/classes/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
