package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

// GormVoucherRepository persists entity creation vouchers, keyed by the
// composite (class, controller) primary key declared on
// domain.EntityCreationVoucher.
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository creates a new instance of VoucherRepository.
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

func (r *GormVoucherRepository) Get(ctx context.Context, classID ids.ClassID, controller domain.Controller) (*domain.EntityCreationVoucher, error) {
	var voucher domain.EntityCreationVoucher
	err := r.db.WithContext(ctx).Take(&voucher, domain.EntityCreationVoucher{
		ClassID:                  classID,
		ControllerKind:           controller.Kind,
		ControllerMemberID:       controller.MemberID,
		ControllerCuratorGroupID: controller.CuratorGroupID,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVoucherNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *GormVoucherRepository) Create(ctx context.Context, voucher *domain.EntityCreationVoucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *GormVoucherRepository) Save(ctx context.Context, voucher *domain.EntityCreationVoucher) error {
	return r.db.WithContext(ctx).Save(voucher).Error
}

func (r *GormVoucherRepository) List(ctx context.Context, page *domain.PageReq) (*domain.PageRes[domain.EntityCreationVoucher], error) {
	return listPaginated[domain.EntityCreationVoucher](ctx, r.db, page, nil, nil, nil)
}
