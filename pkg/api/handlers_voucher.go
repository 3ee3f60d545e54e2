package api

import (
	"net/http"
	"time"

	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/go-chi/chi/v5"
)

// VoucherResp is the wire representation of a domain.EntityCreationVoucher.
type VoucherResp struct {
	ClassID    ids.ClassID     `json:"classId"`
	Controller ControllerResp  `json:"controller"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	MaximumEntitiesCount uint64 `json:"maximumEntitiesCount"`
	EntitiesCreated      uint64 `json:"entitiesCreated"`
}

func toVoucherResp(v *domain.EntityCreationVoucher) *VoucherResp {
	return &VoucherResp{
		ClassID: v.ClassID,
		Controller: controllerResp(domain.Controller{
			Kind: v.ControllerKind, MemberID: v.ControllerMemberID, CuratorGroupID: v.ControllerCuratorGroupID,
		}),
		CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
		MaximumEntitiesCount: v.MaximumEntitiesCount,
		EntitiesCreated:      v.EntitiesCreated,
	}
}

// UpdateVoucherCeilingReq is the request body for
// PATCH /classes/{classID}/vouchers.
type UpdateVoucherCeilingReq struct {
	Controller ControllerResp `json:"controller"`
	Maximum    uint64         `json:"maximum"`
}

// VoucherHandlers wires domain.VoucherCommander and domain.VoucherRepository
// into chi-routable http.HandlerFuncs. Vouchers are keyed by (class,
// controller) rather than by their own id namespace, so they are mounted
// under the class they belong to.
type VoucherHandlers struct {
	commander  domain.VoucherCommander
	repo       domain.VoucherRepository
	authorizer authz.Authorizer
}

func NewVoucherHandlers(commander domain.VoucherCommander, repo domain.VoucherRepository, authorizer authz.Authorizer) *VoucherHandlers {
	return &VoucherHandlers{commander: commander, repo: repo, authorizer: authorizer}
}

func (h *VoucherHandlers) List() http.HandlerFunc {
	return List(h.repo.List, toVoucherResp)
}

// Routes mounts the voucher endpoints under /classes/{classID}/vouchers. r
// is expected to already be scoped under a route using middlewares.ClassID.
func (h *VoucherHandlers) Routes(r chi.Router) {
	r.With(middlewares.AuthzSimple(authz.ObjectTypeVoucher, authz.ActionRead, h.authorizer)).Get("/vouchers", h.List())
	r.With(
		middlewares.DecodeBody[UpdateVoucherCeilingReq](),
		middlewares.AuthzSimple(authz.ObjectTypeVoucher, authz.ActionUpdateVoucher, h.authorizer),
	).Patch("/vouchers", h.UpdateCeiling())
}

// UpdateCeiling handles PATCH /classes/{classID}/vouchers. The ClassID comes
// from the route scope the voucher routes are mounted under; the target
// controller and the new ceiling come from the request body, since a
// voucher's other key component is the controller, not a path segment.
func (h *VoucherHandlers) UpdateCeiling() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := middlewares.MustGetClassID(r.Context())
		req := middlewares.MustGetBody[UpdateVoucherCeilingReq](r.Context())

		voucher, err := h.commander.UpdateCeiling(r.Context(), classID, req.Controller.toController(), req.Maximum)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, toVoucherResp(voucher))
	}
}
