package domain

import (
	"context"
	"errors"
	"time"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/ids"
)

// EntityCreationVoucher is a per-(class, controller) creation quota. It is
// auto-materialized the first time a controller creates an entity of a
// class, at that class's per-controller limit, and persists indefinitely
// after that (it is never deleted, even if entities_created later drops).
type EntityCreationVoucher struct {
	ClassID                  ids.ClassID `json:"classId" gorm:"primaryKey"`
	ControllerKind           ActorKind   `json:"controllerKind" gorm:"primaryKey"`
	ControllerMemberID       auth.AccountID       `json:"controllerMemberId,omitempty" gorm:"primaryKey"`
	ControllerCuratorGroupID ids.CuratorGroupID   `json:"controllerCuratorGroupId,omitempty" gorm:"primaryKey"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	MaximumEntitiesCount uint64 `json:"maximumEntitiesCount"`
	EntitiesCreated      uint64 `json:"entitiesCreated"`
}

func (EntityCreationVoucher) TableName() string { return "entity_creation_vouchers" }

func voucherKeyFromController(classID ids.ClassID, controller Controller) EntityCreationVoucher {
	return EntityCreationVoucher{
		ClassID:                  classID,
		ControllerKind:           controller.Kind,
		ControllerMemberID:       controller.MemberID,
		ControllerCuratorGroupID: controller.CuratorGroupID,
	}
}

// ErrVoucherNotFound signals no voucher has been materialized yet for a
// (class, controller) pair.
var ErrVoucherNotFound = errors.New("voucher not found")

// VoucherRepository persists entity creation vouchers, keyed by
// (ClassID, Controller).
type VoucherRepository interface {
	Get(ctx context.Context, classID ids.ClassID, controller Controller) (*EntityCreationVoucher, error)
	Create(ctx context.Context, voucher *EntityCreationVoucher) error
	Save(ctx context.Context, voucher *EntityCreationVoucher) error
	List(ctx context.Context, req *PageReq) (*PageRes[EntityCreationVoucher], error)
}

// getOrMaterializeVoucher implements spec §4.5 step 4: look up the voucher
// for (class, controller); if absent, synthesize one at the class's
// per-controller limit and persist it before returning.
func getOrMaterializeVoucher(ctx context.Context, tx Store, classID ids.ClassID, controller Controller, perControllerLimit uint64) (*EntityCreationVoucher, error) {
	voucher, err := tx.VoucherRepo().Get(ctx, classID, controller)
	if err == nil {
		return voucher, nil
	}
	if !errors.Is(err, ErrVoucherNotFound) {
		return nil, err
	}

	v := voucherKeyFromController(classID, controller)
	v.MaximumEntitiesCount = perControllerLimit
	if err := tx.VoucherRepo().Create(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// VoucherCommander executes the lead-only voucher ceiling update.
type VoucherCommander interface {
	UpdateCeiling(ctx context.Context, classID ids.ClassID, controller Controller, maximum uint64) (*EntityCreationVoucher, error)
}

type voucherCommander struct {
	store Store
}

// NewVoucherCommander creates a VoucherCommander backed by store.
func NewVoucherCommander(store Store) VoucherCommander {
	return &voucherCommander{store: store}
}

func (c *voucherCommander) UpdateCeiling(ctx context.Context, classID ids.ClassID, controller Controller, maximum uint64) (*EntityCreationVoucher, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *EntityCreationVoucher
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, classID)
		if err != nil {
			return err
		}
		if maximum > class.PerControllerEntityCreationLimit {
			return NewQuotaErrorf("voucher ceiling %d exceeds class per-controller limit %d", maximum, class.PerControllerEntityCreationLimit)
		}

		voucher, err := getOrMaterializeVoucher(ctx, tx, classID, controller, class.PerControllerEntityCreationLimit)
		if err != nil {
			return err
		}
		if voucher.EntitiesCreated > maximum {
			return NewConsistencyErrorf("voucher already has %d entities created, cannot lower ceiling to %d", voucher.EntitiesCreated, maximum)
		}

		voucher.MaximumEntitiesCount = maximum
		if err := tx.VoucherRepo().Save(ctx, voucher); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeVoucherUpdated, WithClass(classID), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"controller": controller.String(), "maximum": maximum}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
