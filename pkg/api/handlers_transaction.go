package api

import (
	"fmt"
	"net/http"

	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// EntityRefReq names an entity either by a concrete id already committed to
// storage, or by the index of an earlier CreateEntity operation in the same
// batch.
type EntityRefReq struct {
	FromBatch     bool         `json:"fromBatch"`
	ConcreteID    ids.EntityID `json:"concreteId,omitempty"`
	InternalIndex int          `json:"internalIndex,omitempty"`
}

func (r EntityRefReq) toRef() domain.EntityRef {
	return domain.EntityRef{FromBatch: r.FromBatch, ConcreteID: r.ConcreteID, InternalIndex: r.InternalIndex}
}

// BatchOperationReq is one entry of a transaction request body.
type BatchOperationReq struct {
	Kind domain.BatchOperationKind `json:"kind"`

	ClassID  ids.ClassID  `json:"classId,omitempty"`
	SchemaID ids.SchemaID `json:"schemaId,omitempty"`

	Target EntityRefReq `json:"target,omitempty"`

	Values properties.ValueMap `json:"values,omitempty"`
}

func (r BatchOperationReq) toOperation() (domain.BatchOperation, error) {
	switch r.Kind {
	case domain.BatchOpCreateEntity, domain.BatchOpAddSchemaSupport, domain.BatchOpUpdatePropertyValues:
	default:
		return domain.BatchOperation{}, fmt.Errorf("unknown batch operation kind %q", r.Kind)
	}
	return domain.BatchOperation{
		Kind: r.Kind, ClassID: r.ClassID, SchemaID: r.SchemaID,
		Target: r.Target.toRef(), Values: r.Values,
	}, nil
}

// ExecuteTransactionReq is the request body for POST /transactions.
type ExecuteTransactionReq struct {
	Actor      ActorReq             `json:"actor"`
	Operations []BatchOperationReq `json:"operations"`
}

// ExecuteTransactionResp reports the concrete ids assigned to every
// CreateEntity operation in the batch, in batch order.
type ExecuteTransactionResp struct {
	CreatedEntityIDs []ids.EntityID `json:"createdEntityIds"`
}

// TransactionHandlers wires domain.TransactionCommander into a single
// chi-routable http.HandlerFunc executing a batch of entity operations
// atomically.
type TransactionHandlers struct {
	commander  domain.TransactionCommander
	authorizer authz.Authorizer
}

func NewTransactionHandlers(commander domain.TransactionCommander, authorizer authz.Authorizer) *TransactionHandlers {
	return &TransactionHandlers{commander: commander, authorizer: authorizer}
}

func (h *TransactionHandlers) Execute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middlewares.MustGetBody[ExecuteTransactionReq](r.Context())

		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		ops := make([]domain.BatchOperation, len(req.Operations))
		for i, opReq := range req.Operations {
			op, err := opReq.toOperation()
			if err != nil {
				render.Render(w, r, ErrInvalidRequest(err))
				return
			}
			ops[i] = op
		}

		created, err := h.commander.Execute(r.Context(), actor, ops)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, ExecuteTransactionResp{CreatedEntityIDs: created})
	}
}

// Routes mounts the transaction endpoint on r.
func (h *TransactionHandlers) Routes(r chi.Router) {
	r.With(
		middlewares.DecodeBody[ExecuteTransactionReq](),
		middlewares.AuthzSimple(authz.ObjectTypeTransaction, authz.ActionSubmit, h.authorizer),
	).Post("/", h.Execute())
}
