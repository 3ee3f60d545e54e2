package api

import (
	"context"
	"net/http"
	"time"

	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CuratorGroupResp is the wire representation of a domain.CuratorGroup.
type CuratorGroupResp struct {
	ID                      ids.CuratorGroupID `json:"id"`
	CreatedAt               time.Time          `json:"createdAt"`
	UpdatedAt               time.Time          `json:"updatedAt"`
	Curators                []ids.CuratorID    `json:"curators"`
	Active                  bool               `json:"active"`
	ClassesUnderMaintenance uint32             `json:"classesUnderMaintenance"`
}

func toCuratorGroupResp(g *domain.CuratorGroup) *CuratorGroupResp {
	curators := make([]ids.CuratorID, 0, len(g.Curators))
	for c := range g.Curators {
		curators = append(curators, c)
	}
	return &CuratorGroupResp{
		ID: g.ID, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt,
		Curators: curators, Active: g.Active,
		ClassesUnderMaintenance: g.ClassesUnderMaintenance,
	}
}

// SetCuratorGroupStatusReq is the request body for PATCH /curator-groups/{groupID}/status.
type SetCuratorGroupStatusReq struct {
	Active bool `json:"active"`
}

// CuratorReq carries the curator account id targeted by an add/remove call.
type CuratorReq struct {
	CuratorID ids.CuratorID `json:"curatorId"`
}

// CuratorGroupHandlers wires domain.CuratorGroupCommander and
// domain.CuratorGroupRepository into chi-routable http.HandlerFuncs.
type CuratorGroupHandlers struct {
	commander  domain.CuratorGroupCommander
	repo       domain.CuratorGroupRepository
	authorizer authz.Authorizer
}

func NewCuratorGroupHandlers(commander domain.CuratorGroupCommander, repo domain.CuratorGroupRepository, authorizer authz.Authorizer) *CuratorGroupHandlers {
	return &CuratorGroupHandlers{commander: commander, repo: repo, authorizer: authorizer}
}

func (h *CuratorGroupHandlers) List() http.HandlerFunc {
	return List(h.repo.List, toCuratorGroupResp)
}

func (h *CuratorGroupHandlers) Get() http.HandlerFunc {
	return Get(middlewares.MustGetCuratorGroupID, h.repo.Get, toCuratorGroupResp)
}

func (h *CuratorGroupHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, err := h.commander.Add(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		writeJSON(w, r, toCuratorGroupResp(group))
	}
}

func (h *CuratorGroupHandlers) Delete() http.HandlerFunc {
	return CommandWithoutBody(middlewares.MustGetCuratorGroupID, h.commander.Remove)
}

func (h *CuratorGroupHandlers) SetStatus() http.HandlerFunc {
	return Action(middlewares.MustGetCuratorGroupID, func(ctx context.Context, id ids.CuratorGroupID, req SetCuratorGroupStatusReq) (*domain.CuratorGroup, error) {
		return h.commander.SetStatus(ctx, id, req.Active)
	}, toCuratorGroupResp)
}

func (h *CuratorGroupHandlers) AddCurator() http.HandlerFunc {
	return Action(middlewares.MustGetCuratorGroupID, func(ctx context.Context, id ids.CuratorGroupID, req CuratorReq) (*domain.CuratorGroup, error) {
		return h.commander.AddCurator(ctx, id, req.CuratorID)
	}, toCuratorGroupResp)
}

func (h *CuratorGroupHandlers) RemoveCurator() http.HandlerFunc {
	return Action(middlewares.MustGetCuratorGroupID, func(ctx context.Context, id ids.CuratorGroupID, req CuratorReq) (*domain.CuratorGroup, error) {
		return h.commander.RemoveCurator(ctx, id, req.CuratorID)
	}, toCuratorGroupResp)
}

func (h *CuratorGroupHandlers) AddMaintainer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := middlewares.MustGetClassID(r.Context())
		groupID := middlewares.MustGetCuratorGroupID(r.Context())
		class, err := h.commander.AddMaintainerToClass(r.Context(), classID, groupID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toClassResp(class))
	}
}

func (h *CuratorGroupHandlers) RemoveMaintainer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := middlewares.MustGetClassID(r.Context())
		groupID := middlewares.MustGetCuratorGroupID(r.Context())
		class, err := h.commander.RemoveMaintainerFromClass(r.Context(), classID, groupID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toClassResp(class))
	}
}

// Routes mounts the curator group endpoints on r. Maintainer add/remove is
// mounted separately under the class router since it is keyed by both ids.
func (h *CuratorGroupHandlers) Routes(r chi.Router) {
	r.With(middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionRead, h.authorizer)).Get("/", h.List())
	r.With(middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionCreate, h.authorizer)).Post("/", h.Create())
	r.Route("/{groupID}", func(r chi.Router) {
		r.Use(middlewares.CuratorGroupID)
		r.With(middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionRead, h.authorizer)).Get("/", h.Get())
		r.With(middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionDelete, h.authorizer)).Delete("/", h.Delete())
		r.With(
			middlewares.DecodeBody[SetCuratorGroupStatusReq](),
			middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionUpdate, h.authorizer),
		).Patch("/status", h.SetStatus())
		// Curator membership changes are curator group administration, gated
		// by the same rule as freezing/unfreezing the group itself.
		r.With(
			middlewares.DecodeBody[CuratorReq](),
			middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionUpdate, h.authorizer),
		).Post("/curators", h.AddCurator())
		r.With(
			middlewares.DecodeBody[CuratorReq](),
			middlewares.AuthzSimple(authz.ObjectTypeCuratorGroup, authz.ActionUpdate, h.authorizer),
		).Delete("/curators", h.RemoveCurator())
	})
}

// MaintainerRoutes mounts /maintainers/{groupID} on r, an extend hook passed
// to ClassHandlers.Routes so it runs inside the {classID}-scoped subrouter
// that middleware already applies.
func (h *CuratorGroupHandlers) MaintainerRoutes(r chi.Router) {
	r.Route("/maintainers/{groupID}", func(r chi.Router) {
		r.Use(middlewares.CuratorGroupID)
		r.With(middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionAddMaintainer, h.authorizer)).Post("/", h.AddMaintainer())
		r.With(middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionAddMaintainer, h.authorizer)).Delete("/", h.RemoveMaintainer())
	})
}
