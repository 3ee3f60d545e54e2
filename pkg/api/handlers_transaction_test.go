package api

import (
	"bytes"
	"context"
	"encoding/json"
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

func TestTransactionHandlers_Execute(t *testing.T) {
	store := database.NewMemStore()
	classCmd := domain.NewClassCommander(store, domain.DefaultLimits())
	leadCtx := auth.WithIdentity(context.Background(), leadIdentity())
	class, err := classCmd.Create(leadCtx, domain.CreateClassParams{
		Name: "item", MaximumEntitiesCount: 100, PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)
	_, err = classCmd.AddSchema(leadCtx, class.ID, domain.AddSchemaParams{
		NewProperties: []domain.NewPropertyParams{
			{Name: "name", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 32}, Required: true},
		},
	})
	require.NoError(t, err)

	entityCmd := domain.NewEntityCommander(store, domain.DefaultLimits())
	txnCmd := domain.NewTransactionCommander(store, domain.DefaultLimits(), entityCmd)
	h := NewTransactionHandlers(txnCmd, permissiveAuthorizer{})

	account := properties.NewUUID()
	reqBody, err := json.Marshal(ExecuteTransactionReq{
		Actor: ActorReq{Kind: domain.ActorKindMember, MemberID: account},
		Operations: []BatchOperationReq{
			{
				Kind: domain.BatchOpCreateEntity, ClassID: class.ID, SchemaID: 0,
				Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "widget"})},
			},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{AccountID: account, Role: auth.RoleSigned}))

	w := httptest.NewRecorder()
	middlewares.DecodeBody[ExecuteTransactionReq]()(h.Execute()).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ExecuteTransactionResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.CreatedEntityIDs, 1)
	assert.NotZero(t, resp.CreatedEntityIDs[0])
}

func TestTransactionHandlers_Execute_RejectsUnknownOperationKind(t *testing.T) {
	store := database.NewMemStore()
	entityCmd := domain.NewEntityCommander(store, domain.DefaultLimits())
	txnCmd := domain.NewTransactionCommander(store, domain.DefaultLimits(), entityCmd)
	h := NewTransactionHandlers(txnCmd, permissiveAuthorizer{})

	reqBody, err := json.Marshal(ExecuteTransactionReq{
		Actor:      ActorReq{Kind: domain.ActorKindMember, MemberID: properties.NewUUID()},
		Operations: []BatchOperationReq{{Kind: "bogus"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	middlewares.DecodeBody[ExecuteTransactionReq]()(h.Execute()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandlers_Routes_EnforcesAuthorization(t *testing.T) {
	store := database.NewMemStore()
	entityCmd := domain.NewEntityCommander(store, domain.DefaultLimits())
	txnCmd := domain.NewTransactionCommander(store, domain.DefaultLimits(), entityCmd)
	h := NewTransactionHandlers(txnCmd, denyingAuthorizer{})

	r := chi.NewRouter()
	r.Route("/transactions", h.Routes)

	reqBody, err := json.Marshal(ExecuteTransactionReq{Actor: ActorReq{Kind: domain.ActorKindMember, MemberID: properties.NewUUID()}})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/transactions/", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
