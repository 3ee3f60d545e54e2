package database

import (
	"context"
	"sort"
	"sync"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
)

// MemStore is a process-local, non-durable domain.Store backed by plain Go
// maps, guarded by a single mutex. It exists for fast unit tests that want
// the real commander/validation logic without a Postgres instance; it is
// never wired into cmd/entitygraphd.
type MemStore struct {
	mu sync.Mutex

	classes       map[ids.ClassID]domain.Class
	entities      map[ids.EntityID]domain.Entity
	curatorGroups map[ids.CuratorGroupID]domain.CuratorGroup
	vouchers      map[voucherKey]domain.EntityCreationVoucher
	events        []domain.Event

	classSeq        ids.Sequence[ids.ClassID]
	entitySeq       ids.Sequence[ids.EntityID]
	curatorGroupSeq ids.Sequence[ids.CuratorGroupID]
	eventSeq        int64
}

type voucherKey struct {
	classID        ids.ClassID
	controllerKind domain.ActorKind
	memberID       properties.UUID
	groupID        ids.CuratorGroupID
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		classes:         make(map[ids.ClassID]domain.Class),
		entities:        make(map[ids.EntityID]domain.Entity),
		curatorGroups:   make(map[ids.CuratorGroupID]domain.CuratorGroup),
		vouchers:        make(map[voucherKey]domain.EntityCreationVoucher),
		classSeq:        *ids.NewSequence[ids.ClassID](),
		entitySeq:       *ids.NewSequence[ids.EntityID](),
		curatorGroupSeq: *ids.NewSequence[ids.CuratorGroupID](),
	}
}

// Atomic runs fn against the same store. MemStore has no real transaction
// isolation: mutations are applied in place, so a failing fn may leave
// partial writes behind. This is acceptable for a test double exercising
// the commander logic's validation-before-mutation discipline, not for
// concurrent multi-writer correctness.
func (s *MemStore) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	return fn(s)
}

func (s *MemStore) ClassRepo() domain.ClassRepository             { return &memClassRepo{s} }
func (s *MemStore) EntityRepo() domain.EntityRepository           { return &memEntityRepo{s} }
func (s *MemStore) CuratorGroupRepo() domain.CuratorGroupRepository { return &memCuratorGroupRepo{s} }
func (s *MemStore) VoucherRepo() domain.VoucherRepository         { return &memVoucherRepo{s} }
func (s *MemStore) EventRepo() domain.EventRepository             { return &memEventRepo{s} }

// --- classes ---

type memClassRepo struct{ s *MemStore }

func (r *memClassRepo) NextID(ctx context.Context) (ids.ClassID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.classSeq.Next(), nil
}

func (r *memClassRepo) Get(ctx context.Context, id ids.ClassID) (*domain.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.classes[id]
	if !ok {
		return nil, domain.NewNotFoundErrorf("class %v not found", id)
	}
	return &c, nil
}

func (r *memClassRepo) Create(ctx context.Context, class *domain.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.classes[class.ID] = *class
	return nil
}

func (r *memClassRepo) Save(ctx context.Context, class *domain.Class) error {
	return r.Create(ctx, class)
}

func (r *memClassRepo) Exists(ctx context.Context, id ids.ClassID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.classes[id]
	return ok, nil
}

func (r *memClassRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.classes)), nil
}

func (r *memClassRepo) List(ctx context.Context, req *domain.PageReq) (*domain.PageRes[domain.Class], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.Class, 0, len(r.s.classes))
	for _, c := range r.s.classes {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, req), nil
}

// --- entities ---

type memEntityRepo struct{ s *MemStore }

func (r *memEntityRepo) NextID(ctx context.Context) (ids.EntityID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.entitySeq.Next(), nil
}

func (r *memEntityRepo) Get(ctx context.Context, id ids.EntityID) (*domain.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entities[id]
	if !ok {
		return nil, domain.NewNotFoundErrorf("entity %v not found", id)
	}
	cloned := e
	cloned.Values = make(properties.ValueMap, len(e.Values))
	for pid, v := range e.Values {
		cloned.Values[pid] = v
	}
	cloned.SupportedSchemas = e.SupportedSchemas.Clone()
	return &cloned, nil
}

func (r *memEntityRepo) Create(ctx context.Context, entity *domain.Entity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entities[entity.ID] = *entity
	return nil
}

func (r *memEntityRepo) Save(ctx context.Context, entity *domain.Entity) error {
	return r.Create(ctx, entity)
}

func (r *memEntityRepo) Delete(ctx context.Context, id ids.EntityID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.entities, id)
	return nil
}

func (r *memEntityRepo) Exists(ctx context.Context, id ids.EntityID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.entities[id]
	return ok, nil
}

func (r *memEntityRepo) List(ctx context.Context, req *domain.PageReq) (*domain.PageRes[domain.Entity], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.Entity, 0, len(r.s.entities))
	for _, e := range r.s.entities {
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, req), nil
}

// --- curator groups ---

type memCuratorGroupRepo struct{ s *MemStore }

func (r *memCuratorGroupRepo) NextID(ctx context.Context) (ids.CuratorGroupID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.curatorGroupSeq.Next(), nil
}

func (r *memCuratorGroupRepo) Get(ctx context.Context, id ids.CuratorGroupID) (*domain.CuratorGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.curatorGroups[id]
	if !ok {
		return nil, domain.NewNotFoundErrorf("curator group %v not found", id)
	}
	return &g, nil
}

func (r *memCuratorGroupRepo) Create(ctx context.Context, group *domain.CuratorGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.curatorGroups[group.ID] = *group
	return nil
}

func (r *memCuratorGroupRepo) Save(ctx context.Context, group *domain.CuratorGroup) error {
	return r.Create(ctx, group)
}

func (r *memCuratorGroupRepo) Delete(ctx context.Context, id ids.CuratorGroupID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.curatorGroups, id)
	return nil
}

func (r *memCuratorGroupRepo) Exists(ctx context.Context, id ids.CuratorGroupID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.curatorGroups[id]
	return ok, nil
}

func (r *memCuratorGroupRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.curatorGroups)), nil
}

func (r *memCuratorGroupRepo) List(ctx context.Context, req *domain.PageReq) (*domain.PageRes[domain.CuratorGroup], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.CuratorGroup, 0, len(r.s.curatorGroups))
	for _, g := range r.s.curatorGroups {
		items = append(items, g)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, req), nil
}

// --- vouchers ---

type memVoucherRepo struct{ s *MemStore }

func keyOf(classID ids.ClassID, controller domain.Controller) voucherKey {
	return voucherKey{
		classID:        classID,
		controllerKind: controller.Kind,
		memberID:       controller.MemberID,
		groupID:        controller.CuratorGroupID,
	}
}

func (r *memVoucherRepo) Get(ctx context.Context, classID ids.ClassID, controller domain.Controller) (*domain.EntityCreationVoucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[keyOf(classID, controller)]
	if !ok {
		return nil, domain.ErrVoucherNotFound
	}
	return &v, nil
}

func (r *memVoucherRepo) Create(ctx context.Context, voucher *domain.EntityCreationVoucher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	controller := domain.Controller{
		Kind:           voucher.ControllerKind,
		MemberID:       voucher.ControllerMemberID,
		CuratorGroupID: voucher.ControllerCuratorGroupID,
	}
	r.s.vouchers[keyOf(voucher.ClassID, controller)] = *voucher
	return nil
}

func (r *memVoucherRepo) Save(ctx context.Context, voucher *domain.EntityCreationVoucher) error {
	return r.Create(ctx, voucher)
}

func (r *memVoucherRepo) List(ctx context.Context, req *domain.PageReq) (*domain.PageRes[domain.EntityCreationVoucher], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.EntityCreationVoucher, 0, len(r.s.vouchers))
	for _, v := range r.s.vouchers {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ClassID < items[j].ClassID })
	return paginate(items, req), nil
}

// --- events ---

type memEventRepo struct{ s *MemStore }

func (r *memEventRepo) Create(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.eventSeq++
	event.SequenceNumber = r.s.eventSeq
	if event.ID == (properties.UUID{}) {
		event.ID = properties.NewUUID()
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *memEventRepo) ListFromSequence(ctx context.Context, fromSequenceNumber int64, limit int) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Event, 0, limit)
	for i := range r.s.events {
		e := r.s.events[i]
		if e.SequenceNumber <= fromSequenceNumber {
			continue
		}
		out = append(out, &e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// paginate slices a pre-sorted, already-materialized item list the way
// listPaginated does for the GORM-backed store, so tests can swap MemStore
// in for GormStore without changing assertions about pagination shape.
func paginate[T any](items []T, req *domain.PageReq) *domain.PageRes[T] {
	total := int64(len(items))
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	start := (req.Page - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return domain.NewPaginatedResult(items[start:end], total, req)
}
