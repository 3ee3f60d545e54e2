package domain

import (
	"context"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
)

// TransferCommander executes ownership transfer.
type TransferCommander interface {
	Transfer(ctx context.Context, id ids.EntityID, newController Controller) error
}

type transferCommander struct {
	store Store
}

// NewTransferCommander creates a TransferCommander backed by store.
func NewTransferCommander(store Store) TransferCommander {
	return &transferCommander{store: store}
}

// Transfer moves an entity and every entity reachable from it through a
// same-controller reference edge to newController in one atomic step. The
// root entity must have no pending inbound same-owner references of its
// own, since such a reference means some other entity still insists on
// moving together with the root under a different root's walk.
//
// The walk is a depth-first traversal over same-controller reference edges
// with a visited set, matching the recursive ownership-transfer algorithm
// this store's semantics are modeled on: cycles are possible (two entities
// referencing each other) and must not cause infinite recursion or a
// double-visit of the same entity.
func (c *transferCommander) Transfer(ctx context.Context, id ids.EntityID, newController Controller) error {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return err
	}

	return c.store.Atomic(ctx, func(tx Store) error {
		root, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if root.InboundSameOwnerCount > 0 {
			return NewConsistencyErrorf("entity %v has %d pending same-owner reference(s) and cannot be the root of a transfer", id, root.InboundSameOwnerCount)
		}
		if root.Controller == newController {
			return nil
		}

		visited := map[ids.EntityID]struct{}{}
		classCache := map[ids.ClassID]*Class{}
		moved, err := c.walk(ctx, tx, root, newController, visited, classCache)
		if err != nil {
			return err
		}

		event, err := NewEvent(EventTypeEntityOwnershipTransferred, WithEntity(root), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"movedEntityCount": len(moved), "newController": newController.String()}))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
}

func (c *transferCommander) walk(ctx context.Context, tx Store, entity *Entity, newController Controller, visited map[ids.EntityID]struct{}, classCache map[ids.ClassID]*Class) ([]ids.EntityID, error) {
	if _, seen := visited[entity.ID]; seen {
		return nil, nil
	}
	visited[entity.ID] = struct{}{}

	oldController := entity.Controller
	entity.Controller = newController
	if err := tx.EntityRepo().Save(ctx, entity); err != nil {
		return nil, err
	}
	moved := []ids.EntityID{entity.ID}

	class, ok := classCache[entity.ClassID]
	if !ok {
		var err error
		class, err = tx.ClassRepo().Get(ctx, entity.ClassID)
		if err != nil {
			return nil, err
		}
		classCache[entity.ClassID] = class
	}

	for pid, value := range entity.Values {
		if int(pid) >= len(class.Properties) {
			continue
		}
		prop := class.Properties[pid]
		if prop.Type.DataType != properties.DataTypeReference || !prop.Type.SameController {
			continue
		}
		for _, refID := range value.References(prop.Type) {
			child, err := tx.EntityRepo().Get(ctx, refID)
			if err != nil {
				return nil, err
			}
			if child.Controller != oldController {
				continue
			}
			childMoved, err := c.walk(ctx, tx, child, newController, visited, classCache)
			if err != nil {
				return nil, err
			}
			moved = append(moved, childMoved...)
		}
	}

	return moved, nil
}
