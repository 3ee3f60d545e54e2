package domain

import (
	"context"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
)

// BatchOperationKind is the closed set of operations a transaction may
// carry.
type BatchOperationKind string

const (
	BatchOpCreateEntity          BatchOperationKind = "create_entity"
	BatchOpAddSchemaSupport      BatchOperationKind = "add_schema_support"
	BatchOpUpdatePropertyValues  BatchOperationKind = "update_property_values"
)

// EntityRef names an entity either by a concrete id already committed to
// storage, or by the index of a CreateEntity operation earlier in the same
// batch (InternalIndex, with FromBatch set). Forward references are not
// permitted: InternalIndex must name an operation that already ran.
type EntityRef struct {
	FromBatch      bool
	ConcreteID     ids.EntityID
	InternalIndex  int
}

// resolveEntityRef resolves a ref against a concrete id, or against the
// batch's scratch table of already-created entity ids.
func resolveEntityRef(ref EntityRef, created map[int]ids.EntityID) (ids.EntityID, error) {
	if !ref.FromBatch {
		return ref.ConcreteID, nil
	}
	id, ok := created[ref.InternalIndex]
	if !ok {
		return 0, NewConsistencyErrorf("batch operation refers to internal index %d which has not run yet", ref.InternalIndex)
	}
	return id, nil
}

// BatchOperation is one entry in a transaction, in the order it must run.
type BatchOperation struct {
	Kind BatchOperationKind

	// CreateEntity
	ClassID  ids.ClassID
	SchemaID ids.SchemaID

	// AddSchemaSupport / UpdatePropertyValues target
	Target EntityRef

	Values properties.ValueMap
}

// TransactionCommander executes a batch of entity operations as a single
// atomic unit: either every operation succeeds, or none of their effects
// are persisted.
type TransactionCommander interface {
	Execute(ctx context.Context, actor Actor, ops []BatchOperation) ([]ids.EntityID, error)
}

type transactionCommander struct {
	store    Store
	limits   Limits
	entities EntityCommander
}

// NewTransactionCommander creates a TransactionCommander backed by store.
// Execute runs each operation through an EntityCommander bound to the
// batch's own transaction store; entities is kept but not called by Execute.
func NewTransactionCommander(store Store, limits Limits, entities EntityCommander) TransactionCommander {
	return &transactionCommander{store: store, limits: limits, entities: entities}
}

// Execute runs ops in order inside one Store.Atomic transaction, resolving
// EntityRef.FromBatch targets against the ids created earlier in the same
// call. It returns the concrete id assigned to every CreateEntity operation,
// in batch order.
func (c *transactionCommander) Execute(ctx context.Context, actor Actor, ops []BatchOperation) ([]ids.EntityID, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, NewInvalidInputErrorf("transaction has no operations")
	}
	if len(ops) > c.limits.MaxOpsPerBatch {
		return nil, NewQuotaErrorf("transaction has %d operations, exceeding the limit of %d", len(ops), c.limits.MaxOpsPerBatch)
	}

	var createdIDs []ids.EntityID
	err := c.store.Atomic(ctx, func(tx Store) error {
		created := map[int]ids.EntityID{}
		// Bound to tx so a failing operation discards the ones before it.
		entities := NewEntityCommander(tx, c.limits)

		for i, op := range ops {
			switch op.Kind {
			case BatchOpCreateEntity:
				values, err := resolveValueRefs(op.Values, created)
				if err != nil {
					return err
				}
				entity, err := entities.Create(ctx, actor, CreateEntityParams{
					ClassID:  op.ClassID,
					SchemaID: op.SchemaID,
					Values:   values,
				})
				if err != nil {
					return err
				}
				created[i] = entity.ID
				createdIDs = append(createdIDs, entity.ID)

			case BatchOpAddSchemaSupport:
				targetID, err := resolveEntityRef(op.Target, created)
				if err != nil {
					return err
				}
				values, err := resolveValueRefs(op.Values, created)
				if err != nil {
					return err
				}
				if _, err := entities.AddSchemaSupport(ctx, actor, targetID, op.SchemaID, values); err != nil {
					return err
				}

			case BatchOpUpdatePropertyValues:
				targetID, err := resolveEntityRef(op.Target, created)
				if err != nil {
					return err
				}
				values, err := resolveValueRefs(op.Values, created)
				if err != nil {
					return err
				}
				if _, err := entities.UpdatePropertyValues(ctx, actor, targetID, values); err != nil {
					return err
				}

			default:
				return NewInvalidInputErrorf("unknown batch operation kind %q", op.Kind)
			}
		}

		event, err := NewEvent(EventTypeTransactionCompleted, WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"operationCount": len(ops), "createdEntityCount": len(createdIDs)}))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return createdIDs, nil
}

// resolveValueRefs substitutes concrete entity ids for every
// ReferenceFromBatch scalar in values, resolving against created the same
// way resolveEntityRef does for an operation's Target. This lets a batch
// operation's property values, not just its target, name an entity created
// earlier in the same batch — e.g. creating two entities in one transaction
// where the second's reference property points at the first.
func resolveValueRefs(values properties.ValueMap, created map[int]ids.EntityID) (properties.ValueMap, error) {
	if values == nil {
		return nil, nil
	}
	resolved := make(properties.ValueMap, len(values))
	for pid, v := range values {
		rv, err := resolvePropertyValueRefs(v, created)
		if err != nil {
			return nil, err
		}
		resolved[pid] = rv
	}
	return resolved, nil
}

func resolvePropertyValueRefs(v properties.PropertyValue, created map[int]ids.EntityID) (properties.PropertyValue, error) {
	if v.Vector {
		items := make([]properties.ScalarValue, len(v.Items))
		for i, item := range v.Items {
			resolvedItem, err := resolveScalarRef(item, created)
			if err != nil {
				return properties.PropertyValue{}, err
			}
			items[i] = resolvedItem
		}
		return properties.PropertyValue{Vector: true, Items: items, Nonce: v.Nonce}, nil
	}
	single, err := resolveScalarRef(v.Single, created)
	if err != nil {
		return properties.PropertyValue{}, err
	}
	return properties.PropertyValue{Vector: false, Single: single}, nil
}

func resolveScalarRef(s properties.ScalarValue, created map[int]ids.EntityID) (properties.ScalarValue, error) {
	if !s.ReferenceFromBatch {
		return s, nil
	}
	id, ok := created[s.ReferenceInternalIndex]
	if !ok {
		return properties.ScalarValue{}, NewConsistencyErrorf("batch operation refers to internal index %d which has not run yet", s.ReferenceInternalIndex)
	}
	s.Reference = id
	s.ReferenceFromBatch = false
	return s, nil
}
