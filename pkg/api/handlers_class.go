package api

import (
	"context"
	"net/http"
	"time"

	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/go-chi/chi/v5"
)

// ClassResp is the wire representation of a domain.Class.
type ClassResp struct {
	ID          ids.ClassID `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	Name        string `json:"name"`
	Description string `json:"description"`

	Properties  domain.PropertyList     `json:"properties"`
	Schemas     domain.SchemaList       `json:"schemas"`
	Permissions ClassPermissionsResp    `json:"permissions"`

	MaximumEntitiesCount              uint64 `json:"maximumEntitiesCount"`
	CurrentNumberOfEntities           uint64 `json:"currentNumberOfEntities"`
	PerControllerEntityCreationLimit  uint64 `json:"perControllerEntityCreationLimit"`
}

// ClassPermissionsResp renders the maintainer set as a sorted-free slice,
// since a Go map has no stable JSON key ordering and maintainers are
// identified by numeric id anyway.
type ClassPermissionsResp struct {
	AnyMember                     bool                 `json:"anyMember"`
	EntityCreationBlocked         bool                 `json:"entityCreationBlocked"`
	AllEntityPropertyValuesLocked bool                 `json:"allEntityPropertyValuesLocked"`
	Maintainers                   []ids.CuratorGroupID `json:"maintainers"`
}

func toClassResp(c *domain.Class) *ClassResp {
	maintainers := make([]ids.CuratorGroupID, 0, len(c.Permissions.Maintainers))
	for gid := range c.Permissions.Maintainers {
		maintainers = append(maintainers, gid)
	}
	return &ClassResp{
		ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		Name: c.Name, Description: c.Description,
		Properties: c.Properties, Schemas: c.Schemas,
		Permissions: ClassPermissionsResp{
			AnyMember:                     c.Permissions.AnyMember,
			EntityCreationBlocked:         c.Permissions.EntityCreationBlocked,
			AllEntityPropertyValuesLocked: c.Permissions.AllEntityPropertyValuesLocked,
			Maintainers:                   maintainers,
		},
		MaximumEntitiesCount:              c.MaximumEntitiesCount,
		CurrentNumberOfEntities:           c.CurrentNumberOfEntities,
		PerControllerEntityCreationLimit:  c.PerControllerEntityCreationLimit,
	}
}

// CreateClassReq is the request body for POST /classes.
type CreateClassReq struct {
	Name                              string               `json:"name"`
	Description                       string               `json:"description"`
	AnyMember                         bool                 `json:"anyMember"`
	EntityCreationBlocked             bool                 `json:"entityCreationBlocked"`
	AllEntityPropertyValuesLocked     bool                 `json:"allEntityPropertyValuesLocked"`
	Maintainers                       []ids.CuratorGroupID `json:"maintainers"`
	MaximumEntitiesCount              uint64               `json:"maximumEntitiesCount"`
	PerControllerEntityCreationLimit  uint64               `json:"perControllerEntityCreationLimit"`
}

func (r CreateClassReq) toParams() domain.CreateClassParams {
	return domain.CreateClassParams{
		Name: r.Name, Description: r.Description,
		AnyMember: r.AnyMember, EntityCreationBlocked: r.EntityCreationBlocked,
		AllEntityPropertyValuesLocked: r.AllEntityPropertyValuesLocked,
		Maintainers:                   r.Maintainers,
		MaximumEntitiesCount:          r.MaximumEntitiesCount,
		PerControllerEntityCreationLimit: r.PerControllerEntityCreationLimit,
	}
}

// UpdateClassPermissionsReq is the request body for PATCH /classes/{classID}/permissions.
type UpdateClassPermissionsReq struct {
	AnyMember                     *bool                 `json:"anyMember,omitempty"`
	EntityCreationBlocked         *bool                 `json:"entityCreationBlocked,omitempty"`
	AllEntityPropertyValuesLocked *bool                 `json:"allEntityPropertyValuesLocked,omitempty"`
	Maintainers                   *[]ids.CuratorGroupID `json:"maintainers,omitempty"`
}

func (r UpdateClassPermissionsReq) toParams() domain.UpdateClassPermissionsParams {
	return domain.UpdateClassPermissionsParams{
		AnyMember: r.AnyMember, EntityCreationBlocked: r.EntityCreationBlocked,
		AllEntityPropertyValuesLocked: r.AllEntityPropertyValuesLocked,
		Maintainers:                   r.Maintainers,
	}
}

// NewPropertyReq describes one property to append via AddSchema.
type NewPropertyReq struct {
	Name                 string                  `json:"name"`
	Description          string                  `json:"description"`
	Type                 properties.PropertyType `json:"type"`
	Required             bool                    `json:"required"`
	Unique               bool                    `json:"unique"`
	LockedFromMaintainer bool                    `json:"lockedFromMaintainer"`
	LockedFromController bool                    `json:"lockedFromController"`
}

// AddSchemaReq is the request body for POST /classes/{classID}/schemas.
type AddSchemaReq struct {
	ExistingPropertyIDs []ids.PropertyID `json:"existingPropertyIds"`
	NewProperties       []NewPropertyReq `json:"newProperties"`
}

func (r AddSchemaReq) toParams() domain.AddSchemaParams {
	newProps := make([]domain.NewPropertyParams, len(r.NewProperties))
	for i, np := range r.NewProperties {
		newProps[i] = domain.NewPropertyParams{
			Name: np.Name, Description: np.Description, Type: np.Type,
			Required: np.Required, Unique: np.Unique,
			LockedFromMaintainer: np.LockedFromMaintainer,
			LockedFromController: np.LockedFromController,
		}
	}
	return domain.AddSchemaParams{ExistingPropertyIDs: r.ExistingPropertyIDs, NewProperties: newProps}
}

// UpdateSchemaStatusReq is the request body for PATCH /classes/{classID}/schemas/{schemaID}.
type UpdateSchemaStatusReq struct {
	Active bool `json:"active"`
}

// ClassHandlers wires domain.ClassCommander and domain.ClassRepository into
// chi-routable http.HandlerFuncs.
type ClassHandlers struct {
	commander  domain.ClassCommander
	repo       domain.ClassRepository
	authorizer authz.Authorizer
}

func NewClassHandlers(commander domain.ClassCommander, repo domain.ClassRepository, authorizer authz.Authorizer) *ClassHandlers {
	return &ClassHandlers{commander: commander, repo: repo, authorizer: authorizer}
}

func (h *ClassHandlers) List() http.HandlerFunc {
	return List(h.repo.List, toClassResp)
}

func (h *ClassHandlers) Get() http.HandlerFunc {
	return Get(middlewares.MustGetClassID, h.repo.Get, toClassResp)
}

func (h *ClassHandlers) Create() http.HandlerFunc {
	return Create(func(ctx context.Context, req CreateClassReq) (*domain.Class, error) {
		return h.commander.Create(ctx, req.toParams())
	}, toClassResp)
}

func (h *ClassHandlers) UpdatePermissions() http.HandlerFunc {
	return Action(middlewares.MustGetClassID, func(ctx context.Context, id ids.ClassID, req UpdateClassPermissionsReq) (*domain.Class, error) {
		return h.commander.UpdatePermissions(ctx, id, req.toParams())
	}, toClassResp)
}

func (h *ClassHandlers) AddSchema() http.HandlerFunc {
	return Action(middlewares.MustGetClassID, func(ctx context.Context, id ids.ClassID, req AddSchemaReq) (*domain.Class, error) {
		return h.commander.AddSchema(ctx, id, req.toParams())
	}, toClassResp)
}

func (h *ClassHandlers) UpdateSchemaStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := middlewares.MustGetClassID(r.Context())
		schemaID, ok := parseSchemaID(w, r)
		if !ok {
			return
		}
		req := middlewares.MustGetBody[UpdateSchemaStatusReq](r.Context())

		class, err := h.commander.UpdateSchemaStatus(r.Context(), classID, schemaID, req.Active)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toClassResp(class))
	}
}

// Routes mounts the class and schema endpoints on r. extend is invoked with
// the {classID}-scoped subrouter, letting callers mount other aggregates
// keyed by (classID, ...) — curator group maintainer routes, vouchers —
// into the same scope without a second, conflicting Route("/{classID}", ...)
// mount.
func (h *ClassHandlers) Routes(r chi.Router, extend ...func(chi.Router)) {
	r.With(middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionRead, h.authorizer)).Get("/", h.List())
	r.With(middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionCreate, h.authorizer)).Post("/", h.Create())
	r.Route("/{classID}", func(r chi.Router) {
		r.Use(middlewares.ClassID)
		r.With(middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionRead, h.authorizer)).Get("/", h.Get())
		r.With(
			middlewares.DecodeBody[UpdateClassPermissionsReq](),
			middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionUpdatePerms, h.authorizer),
		).Patch("/permissions", h.UpdatePermissions())
		r.With(
			middlewares.DecodeBody[AddSchemaReq](),
			middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionAddSchema, h.authorizer),
		).Post("/schemas", h.AddSchema())
		// Schema activation is Lead-only schema administration, gated by the
		// same rule as adding a schema in the first place.
		r.With(
			middlewares.DecodeBody[UpdateSchemaStatusReq](),
			middlewares.AuthzSimple(authz.ObjectTypeClass, authz.ActionAddSchema, h.authorizer),
		).Patch("/schemas/{schemaID}", h.UpdateSchemaStatus())
		for _, fn := range extend {
			fn(r)
		}
	})
}
