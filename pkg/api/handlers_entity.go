package api

import (
	"net/http"
	"time"

	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// EntityResp is the wire representation of a domain.Entity.
type EntityResp struct {
	ID        ids.EntityID `json:"id"`
	ClassID   ids.ClassID  `json:"classId"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	Controller       ControllerResp      `json:"controller"`
	SupportedSchemas []ids.SchemaID      `json:"supportedSchemas"`
	Values           properties.ValueMap `json:"values"`

	Frozen        bool `json:"frozen"`
	Referenceable bool `json:"referenceable"`

	ReferenceCount        uint64 `json:"referenceCount"`
	InboundSameOwnerCount uint64 `json:"inboundSameOwnerCount"`
}

func toEntityResp(e *domain.Entity) *EntityResp {
	schemas := make([]ids.SchemaID, 0, len(e.SupportedSchemas))
	for sid := range e.SupportedSchemas {
		schemas = append(schemas, sid)
	}
	return &EntityResp{
		ID: e.ID, ClassID: e.ClassID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
		Controller:       controllerResp(e.Controller),
		SupportedSchemas: schemas,
		Values:           e.Values,
		Frozen:           e.Frozen,
		Referenceable:    e.Referenceable,

		ReferenceCount:        e.ReferenceCount,
		InboundSameOwnerCount: e.InboundSameOwnerCount,
	}
}

// CreateEntityReq is the request body for POST /entities. The caller names
// the actor it claims to be; the domain layer verifies the claim against the
// authenticated identity before it ever reaches a commander method.
type CreateEntityReq struct {
	Actor    ActorReq            `json:"actor"`
	ClassID  ids.ClassID         `json:"classId"`
	SchemaID ids.SchemaID        `json:"schemaId"`
	Values   properties.ValueMap `json:"values"`
}

// RemoveEntityReq is the request body for DELETE /entities/{entityID}: the
// path supplies the entity id, the body supplies the claimed actor.
type RemoveEntityReq struct {
	Actor ActorReq `json:"actor"`
}

type AddSchemaSupportReq struct {
	Actor  ActorReq            `json:"actor"`
	Values properties.ValueMap `json:"values"`
}

type UpdatePropertyValuesReq struct {
	Actor   ActorReq            `json:"actor"`
	Updates properties.ValueMap `json:"updates"`
}

type ClearVectorPropertyReq struct {
	Actor       ActorReq         `json:"actor"`
	CallerNonce properties.Nonce `json:"callerNonce"`
}

type InsertAtVectorPropertyReq struct {
	Actor       ActorReq              `json:"actor"`
	Index       int                   `json:"index"`
	Item        properties.ScalarValue `json:"item"`
	CallerNonce properties.Nonce      `json:"callerNonce"`
}

type RemoveAtVectorPropertyReq struct {
	Actor       ActorReq         `json:"actor"`
	Index       int              `json:"index"`
	CallerNonce properties.Nonce `json:"callerNonce"`
}

// UpdateEntityPermissionsReq is the request body for PATCH
// /entities/{entityID}/permissions. Lead-only, so it carries no actor claim.
type UpdateEntityPermissionsReq struct {
	Frozen        *bool `json:"frozen,omitempty"`
	Referenceable *bool `json:"referenceable,omitempty"`
}

// TransferEntityReq is the request body for POST /entities/{entityID}/transfer.
type TransferEntityReq struct {
	NewController ControllerResp `json:"newController"`
}

// EntityHandlers wires domain.EntityCommander, domain.EntityRepository and
// domain.TransferCommander into chi-routable http.HandlerFuncs.
type EntityHandlers struct {
	commander  domain.EntityCommander
	repo       domain.EntityRepository
	transfer   domain.TransferCommander
	authorizer authz.Authorizer
}

func NewEntityHandlers(commander domain.EntityCommander, repo domain.EntityRepository, transfer domain.TransferCommander, authorizer authz.Authorizer) *EntityHandlers {
	return &EntityHandlers{commander: commander, repo: repo, transfer: transfer, authorizer: authorizer}
}

func (h *EntityHandlers) List() http.HandlerFunc {
	return List(h.repo.List, toEntityResp)
}

func (h *EntityHandlers) Get() http.HandlerFunc {
	return Get(middlewares.MustGetEntityID, h.repo.Get, toEntityResp)
}

func (h *EntityHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middlewares.MustGetBody[CreateEntityReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.Create(r.Context(), actor, domain.CreateEntityParams{
			ClassID: req.ClassID, SchemaID: req.SchemaID, Values: req.Values,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) Remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		req := middlewares.MustGetBody[RemoveEntityReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		if err := h.commander.Remove(r.Context(), actor, id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *EntityHandlers) AddSchemaSupport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		schemaID, ok := parseSchemaID(w, r)
		if !ok {
			return
		}
		req := middlewares.MustGetBody[AddSchemaSupportReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.AddSchemaSupport(r.Context(), actor, id, schemaID, req.Values)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) UpdatePropertyValues() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		req := middlewares.MustGetBody[UpdatePropertyValuesReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.UpdatePropertyValues(r.Context(), actor, id, req.Updates)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) ClearVectorProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}
		req := middlewares.MustGetBody[ClearVectorPropertyReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.ClearVectorProperty(r.Context(), actor, id, propertyID, req.CallerNonce)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) InsertAtVectorProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}
		req := middlewares.MustGetBody[InsertAtVectorPropertyReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.InsertAtVectorProperty(r.Context(), actor, id, propertyID, req.Index, req.Item, req.CallerNonce)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) RemoveAtVectorProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}
		req := middlewares.MustGetBody[RemoveAtVectorPropertyReq](r.Context())
		actor, err := req.Actor.ToActor()
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}

		entity, err := h.commander.RemoveAtVectorProperty(r.Context(), actor, id, propertyID, req.Index, req.CallerNonce)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

func (h *EntityHandlers) UpdatePermissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		req := middlewares.MustGetBody[UpdateEntityPermissionsReq](r.Context())

		entity, err := h.commander.UpdatePermissions(r.Context(), id, req.Frozen, req.Referenceable)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toEntityResp(entity))
	}
}

// Transfer moves the entity rooted at {entityID}, and everything reachable
// from it through a same-controller reference edge, to a new controller.
func (h *EntityHandlers) Transfer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middlewares.MustGetEntityID(r.Context())
		req := middlewares.MustGetBody[TransferEntityReq](r.Context())

		if err := h.transfer.Transfer(r.Context(), id, req.NewController.toController()); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Routes mounts the entity endpoints on r.
func (h *EntityHandlers) Routes(r chi.Router) {
	r.With(middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionRead, h.authorizer)).Get("/", h.List())
	r.With(
		middlewares.DecodeBody[CreateEntityReq](),
		middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionCreate, h.authorizer),
	).Post("/", h.Create())
	r.Route("/{entityID}", func(r chi.Router) {
		r.Use(middlewares.EntityID)
		r.With(middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionRead, h.authorizer)).Get("/", h.Get())
		r.With(
			middlewares.DecodeBody[RemoveEntityReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionDelete, h.authorizer),
		).Delete("/", h.Remove())
		r.With(
			middlewares.DecodeBody[AddSchemaSupportReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionAddSchemaToEnt, h.authorizer),
		).Post("/schemas/{schemaID}", h.AddSchemaSupport())
		r.With(
			middlewares.DecodeBody[UpdatePropertyValuesReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionUpdateValues, h.authorizer),
		).Patch("/values", h.UpdatePropertyValues())
		r.With(
			middlewares.DecodeBody[ClearVectorPropertyReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionUpdateValues, h.authorizer),
		).Post("/values/{propertyID}/clear", h.ClearVectorProperty())
		r.With(
			middlewares.DecodeBody[InsertAtVectorPropertyReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionUpdateValues, h.authorizer),
		).Post("/values/{propertyID}/insert", h.InsertAtVectorProperty())
		r.With(
			middlewares.DecodeBody[RemoveAtVectorPropertyReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionUpdateValues, h.authorizer),
		).Post("/values/{propertyID}/remove", h.RemoveAtVectorProperty())
		r.With(
			middlewares.DecodeBody[UpdateEntityPermissionsReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionUpdatePerms, h.authorizer),
		).Patch("/permissions", h.UpdatePermissions())
		r.With(
			middlewares.DecodeBody[TransferEntityReq](),
			middlewares.AuthzSimple(authz.ObjectTypeEntity, authz.ActionTransferOwner, h.authorizer),
		).Post("/transfer", h.Transfer())
	})
}
