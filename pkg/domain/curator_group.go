package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entitygraph/core/pkg/ids"
)

// CuratorSet is the persisted set of curator account ids belonging to one
// group.
type CuratorSet map[ids.CuratorID]struct{}

func (s CuratorSet) Value() (driver.Value, error) { return json.Marshal(s) }

func (s *CuratorSet) Scan(value any) error {
	if value == nil {
		*s = make(CuratorSet)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal CuratorSet value: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

func (s CuratorSet) GormDataType() string { return "jsonb" }

// CuratorGroup authorizes a set of curator accounts to maintain the classes
// it has been added as a maintainer of.
type CuratorGroup struct {
	ID        ids.CuratorGroupID `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`

	Curators CuratorSet `json:"curators" gorm:"type:jsonb"`
	Active   bool       `json:"active"`

	// ClassesUnderMaintenance counts the classes that currently list this
	// group as a maintainer. A group may only be removed once this is zero.
	ClassesUnderMaintenance uint32 `json:"classesUnderMaintenance"`
}

func (CuratorGroup) TableName() string { return "curator_groups" }

func (g *CuratorGroup) GetID() ids.CuratorGroupID { return g.ID }

// CuratorGroupRepository persists curator groups.
type CuratorGroupRepository interface {
	NextID(ctx context.Context) (ids.CuratorGroupID, error)
	Get(ctx context.Context, id ids.CuratorGroupID) (*CuratorGroup, error)
	Create(ctx context.Context, group *CuratorGroup) error
	Save(ctx context.Context, group *CuratorGroup) error
	Delete(ctx context.Context, id ids.CuratorGroupID) error
	Exists(ctx context.Context, id ids.CuratorGroupID) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, req *PageReq) (*PageRes[CuratorGroup], error)
}

// CuratorGroupCommander executes every lead-only curator group mutation,
// plus the class-side maintainer add/remove calls that touch a group's
// ClassesUnderMaintenance counter.
type CuratorGroupCommander interface {
	Add(ctx context.Context) (*CuratorGroup, error)
	Remove(ctx context.Context, id ids.CuratorGroupID) error
	SetStatus(ctx context.Context, id ids.CuratorGroupID, active bool) (*CuratorGroup, error)
	AddCurator(ctx context.Context, id ids.CuratorGroupID, curator ids.CuratorID) (*CuratorGroup, error)
	RemoveCurator(ctx context.Context, id ids.CuratorGroupID, curator ids.CuratorID) (*CuratorGroup, error)

	AddMaintainerToClass(ctx context.Context, classID ids.ClassID, groupID ids.CuratorGroupID) (*Class, error)
	RemoveMaintainerFromClass(ctx context.Context, classID ids.ClassID, groupID ids.CuratorGroupID) (*Class, error)
}

type curatorGroupCommander struct {
	store  Store
	limits Limits
}

// NewCuratorGroupCommander creates a CuratorGroupCommander backed by store.
func NewCuratorGroupCommander(store Store, limits Limits) CuratorGroupCommander {
	return &curatorGroupCommander{store: store, limits: limits}
}

func (c *curatorGroupCommander) Add(ctx context.Context) (*CuratorGroup, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var group *CuratorGroup
	err := c.store.Atomic(ctx, func(tx Store) error {
		id, err := tx.CuratorGroupRepo().NextID(ctx)
		if err != nil {
			return err
		}
		group = &CuratorGroup{ID: id, Curators: CuratorSet{}, Active: true}
		if err := tx.CuratorGroupRepo().Create(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeCuratorGroupAdded, WithCuratorGroup(group.ID), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (c *curatorGroupCommander) Remove(ctx context.Context, id ids.CuratorGroupID) error {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return err
	}

	return c.store.Atomic(ctx, func(tx Store) error {
		group, err := tx.CuratorGroupRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if group.ClassesUnderMaintenance > 0 {
			return NewConsistencyErrorf("curator group %v still maintains %d class(es)", id, group.ClassesUnderMaintenance)
		}
		if err := tx.CuratorGroupRepo().Delete(ctx, id); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeCuratorGroupRemoved, WithCuratorGroup(id), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
}

func (c *curatorGroupCommander) SetStatus(ctx context.Context, id ids.CuratorGroupID, active bool) (*CuratorGroup, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *CuratorGroup
	err := c.store.Atomic(ctx, func(tx Store) error {
		group, err := tx.CuratorGroupRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		group.Active = active
		if err := tx.CuratorGroupRepo().Save(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeCuratorGroupStatusSet, WithCuratorGroup(id), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"active": active}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *curatorGroupCommander) AddCurator(ctx context.Context, id ids.CuratorGroupID, curator ids.CuratorID) (*CuratorGroup, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *CuratorGroup
	err := c.store.Atomic(ctx, func(tx Store) error {
		group, err := tx.CuratorGroupRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if len(group.Curators) >= c.limits.MaxCuratorsPerGroup {
			return NewQuotaErrorf("curator limit of %d reached for group %v", c.limits.MaxCuratorsPerGroup, id)
		}
		if group.Curators == nil {
			group.Curators = CuratorSet{}
		}
		group.Curators[curator] = struct{}{}

		if err := tx.CuratorGroupRepo().Save(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeCuratorAdded, WithCuratorGroup(id), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"curator": curator.String()}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *curatorGroupCommander) RemoveCurator(ctx context.Context, id ids.CuratorGroupID, curator ids.CuratorID) (*CuratorGroup, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *CuratorGroup
	err := c.store.Atomic(ctx, func(tx Store) error {
		group, err := tx.CuratorGroupRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		delete(group.Curators, curator)

		if err := tx.CuratorGroupRepo().Save(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeCuratorRemoved, WithCuratorGroup(id), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"curator": curator.String()}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *curatorGroupCommander) AddMaintainerToClass(ctx context.Context, classID ids.ClassID, groupID ids.CuratorGroupID) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, classID)
		if err != nil {
			return err
		}
		group, err := tx.CuratorGroupRepo().Get(ctx, groupID)
		if err != nil {
			return err
		}
		if _, already := class.Permissions.Maintainers[groupID]; already {
			return nil
		}
		if len(class.Permissions.Maintainers) >= c.limits.MaxMaintainersPerClass {
			return NewQuotaErrorf("maintainer limit of %d reached for class %v", c.limits.MaxMaintainersPerClass, classID)
		}

		class.Permissions.Maintainers[groupID] = struct{}{}
		group.ClassesUnderMaintenance++

		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}
		if err := tx.CuratorGroupRepo().Save(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeMaintainerAdded, WithClass(classID), WithCuratorGroup(groupID), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = class
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *curatorGroupCommander) RemoveMaintainerFromClass(ctx context.Context, classID ids.ClassID, groupID ids.CuratorGroupID) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, classID)
		if err != nil {
			return err
		}
		if _, present := class.Permissions.Maintainers[groupID]; !present {
			return nil
		}
		group, err := tx.CuratorGroupRepo().Get(ctx, groupID)
		if err != nil {
			return err
		}

		delete(class.Permissions.Maintainers, groupID)
		if group.ClassesUnderMaintenance > 0 {
			group.ClassesUnderMaintenance--
		}

		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}
		if err := tx.CuratorGroupRepo().Save(ctx, group); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeMaintainerRemoved, WithClass(classID), WithCuratorGroup(groupID), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = class
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
