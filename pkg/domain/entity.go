package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
)

// SchemaSupportSet is the set of schemas one entity has added support for.
// An entity may support more than one schema of its class simultaneously.
type SchemaSupportSet map[ids.SchemaID]struct{}

func (s SchemaSupportSet) Value() (driver.Value, error) { return json.Marshal(s) }

func (s *SchemaSupportSet) Scan(value any) error {
	if value == nil {
		*s = make(SchemaSupportSet)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal SchemaSupportSet value: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

func (s SchemaSupportSet) GormDataType() string { return "jsonb" }

// Clone returns an independent copy of the set.
func (s SchemaSupportSet) Clone() SchemaSupportSet {
	out := make(SchemaSupportSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Entity is one instance of a class: a controller, the schemas it has added
// support for, the property values backing those schemas, and the dual
// reference counters that gate its deletion and its eligibility to move in
// an ownership transfer.
type Entity struct {
	ID        ids.EntityID `json:"id" gorm:"primaryKey"`
	ClassID   ids.ClassID  `json:"classId" gorm:"index;not null"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	Controller Controller `json:"controller" gorm:"embedded;embeddedPrefix:controller_"`

	SupportedSchemas SchemaSupportSet    `json:"supportedSchemas" gorm:"type:jsonb"`
	Values           properties.ValueMap `json:"values" gorm:"type:jsonb"`

	// Frozen blocks the controller from mutating the entity; maintainers and
	// any-member access are unaffected.
	Frozen bool `json:"frozen"`
	// Referenceable gates whether another entity's reference property may
	// point at this one. An entity with pending inbound references cannot
	// have Referenceable cleared (see UpdatePermissions).
	Referenceable bool `json:"referenceable"`

	ReferenceCount        uint64 `json:"referenceCount"`
	InboundSameOwnerCount uint64 `json:"inboundSameOwnerCount"`
}

func (Entity) TableName() string { return "entities" }

func (e *Entity) GetID() ids.EntityID { return e.ID }

// EntityRepository persists entities.
type EntityRepository interface {
	NextID(ctx context.Context) (ids.EntityID, error)
	Get(ctx context.Context, id ids.EntityID) (*Entity, error)
	Create(ctx context.Context, entity *Entity) error
	Save(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, id ids.EntityID) error
	Exists(ctx context.Context, id ids.EntityID) (bool, error)
	List(ctx context.Context, req *PageReq) (*PageRes[Entity], error)
}

// CreateEntityParams is the input to Create.
type CreateEntityParams struct {
	ClassID  ids.ClassID
	SchemaID ids.SchemaID
	Values   properties.ValueMap
}

// EntityCommander executes every entity-level mutation.
type EntityCommander interface {
	Create(ctx context.Context, actor Actor, params CreateEntityParams) (*Entity, error)
	Remove(ctx context.Context, actor Actor, id ids.EntityID) error
	AddSchemaSupport(ctx context.Context, actor Actor, id ids.EntityID, schemaID ids.SchemaID, newValues properties.ValueMap) (*Entity, error)
	UpdatePropertyValues(ctx context.Context, actor Actor, id ids.EntityID, updates properties.ValueMap) (*Entity, error)
	ClearVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, callerNonce properties.Nonce) (*Entity, error)
	InsertAtVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, index int, item properties.ScalarValue, callerNonce properties.Nonce) (*Entity, error)
	RemoveAtVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, index int, callerNonce properties.Nonce) (*Entity, error)
	UpdatePermissions(ctx context.Context, id ids.EntityID, frozen, referenceable *bool) (*Entity, error)
}

type entityCommander struct {
	store  Store
	limits Limits
}

// NewEntityCommander creates an EntityCommander backed by store, enforcing
// the given Limits.
func NewEntityCommander(store Store, limits Limits) EntityCommander {
	return &entityCommander{store: store, limits: limits}
}

// schemaProperties resolves the property ids a schema declares on class.
func schemaProperties(class *Class, schemaID ids.SchemaID) ([]ids.PropertyID, error) {
	if int(schemaID) >= len(class.Schemas) {
		return nil, NewNotFoundErrorf("unknown schema id %d on class %v", schemaID, class.ID)
	}
	schema := class.Schemas[schemaID]
	if !schema.IsActive {
		return nil, NewConsistencyErrorf("schema %d on class %v is not active", schemaID, class.ID)
	}
	return schema.PropertyIDs, nil
}

// validateAndResolveValues checks every property id in propertyIDs has a
// shape-valid, type-valid, unique-if-required, reference-resolvable value in
// values (filling in the property's zero value for non-required properties
// left unset), and accumulates the resulting reference-count deltas against
// the given controller.
func (c *entityCommander) validateAndResolveValues(ctx context.Context, tx Store, class *Class, propertyIDs []ids.PropertyID, values properties.ValueMap, controller Controller, delta *rcDelta) (properties.ValueMap, error) {
	resolved := make(properties.ValueMap, len(propertyIDs))
	for _, pid := range propertyIDs {
		if int(pid) >= len(class.Properties) {
			return nil, NewArithmeticErrorf("schema references out-of-range property id %d", pid)
		}
		prop := class.Properties[pid]

		value, present := values[pid]
		if !present {
			if prop.Required {
				return nil, NewInvalidInputErrorf("property %q is required", prop.Name)
			}
			value = properties.PropertyValue{Vector: prop.Type.Vector}
		}

		if err := value.ValidateShape(prop.Type); err != nil {
			return nil, NewInvalidInputErrorf("property %q: %w", prop.Name, err)
		}

		if prop.Unique && !value.IsDefault() {
			for _, item := range scalarItems(value) {
				for otherPid, otherValue := range resolved {
					if otherPid == pid {
						continue
					}
					for _, otherItem := range scalarItems(otherValue) {
						if item.Equal(otherItem) {
							return nil, NewConsistencyErrorf("property %q value is not unique within entity's value set", prop.Name)
						}
					}
				}
			}
		}

		if prop.Type.DataType == properties.DataTypeReference {
			for _, refID := range value.References(prop.Type) {
				referenced, err := tx.EntityRepo().Get(ctx, refID)
				if err != nil {
					return nil, err
				}
				if !referenced.Referenceable {
					return nil, NewConsistencyErrorf("entity %v is not referenceable", refID)
				}
				if prop.Type.SameController && referenced.Controller != controller {
					return nil, NewConsistencyErrorf("property %q requires a same-controller reference", prop.Name)
				}
				delta.add(refID, prop.Type.SameController, 1)
			}
		}

		resolved[pid] = value
	}
	return resolved, nil
}

func (c *entityCommander) Create(ctx context.Context, actor Actor, params CreateEntityParams) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}
	controller := ControllerFromActor(actor)

	var entity *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, params.ClassID)
		if err != nil {
			return err
		}
		if class.Permissions.EntityCreationBlocked {
			return NewUnauthorizedErrorf("entity creation is blocked for class %v", class.ID)
		}
		if class.CurrentNumberOfEntities >= class.MaximumEntitiesCount {
			return NewQuotaErrorf("class %v has reached its maximum entity count of %d", class.ID, class.MaximumEntitiesCount)
		}

		propertyIDs, err := schemaProperties(class, params.SchemaID)
		if err != nil {
			return err
		}

		delta := newRCDelta()
		values, err := c.validateAndResolveValues(ctx, tx, class, propertyIDs, params.Values, controller, delta)
		if err != nil {
			return err
		}

		voucher, err := getOrMaterializeVoucher(ctx, tx, class.ID, controller, class.PerControllerEntityCreationLimit)
		if err != nil {
			return err
		}
		if voucher.EntitiesCreated >= voucher.MaximumEntitiesCount {
			return NewQuotaErrorf("controller %s has reached its entity creation voucher for class %v", controller, class.ID)
		}

		id, err := tx.EntityRepo().NextID(ctx)
		if err != nil {
			return err
		}
		entity = &Entity{
			ID:                    id,
			ClassID:               class.ID,
			Controller:            controller,
			SupportedSchemas:      SchemaSupportSet{params.SchemaID: {}},
			Values:                values,
			Referenceable:         true,
		}
		if err := tx.EntityRepo().Create(ctx, entity); err != nil {
			return err
		}

		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}

		class.CurrentNumberOfEntities++
		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}
		voucher.EntitiesCreated++
		if err := tx.VoucherRepo().Save(ctx, voucher); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeEntityCreated, WithEntity(entity), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"schemaId": params.SchemaID}))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *entityCommander) Remove(ctx context.Context, actor Actor, id ids.EntityID) error {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return err
	}

	return c.store.Atomic(ctx, func(tx Store) error {
		entity, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		class, err := tx.ClassRepo().Get(ctx, entity.ClassID)
		if err != nil {
			return err
		}
		level, err := DeriveEntityAccessLevel(ctx, tx, class, entity, actor)
		if err != nil {
			return err
		}
		if level != EntityControllerLevel && level != EntityMaintainerLevel {
			return NewUnauthorizedErrorf("actor has no standing to remove entity %v", id)
		}
		if entity.ReferenceCount > 0 {
			return NewConsistencyErrorf("entity %v still has %d inbound reference(s)", id, entity.ReferenceCount)
		}

		outbound := newRCDelta()
		for pid, value := range entity.Values {
			if int(pid) >= len(class.Properties) {
				continue
			}
			prop := class.Properties[pid]
			if prop.Type.DataType != properties.DataTypeReference {
				continue
			}
			for _, refID := range value.References(prop.Type) {
				outbound.add(refID, prop.Type.SameController, -1)
			}
		}
		if err := applyRCDelta(ctx, tx, outbound); err != nil {
			return err
		}

		if err := tx.EntityRepo().Delete(ctx, id); err != nil {
			return err
		}
		class.CurrentNumberOfEntities--
		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeEntityRemoved, WithEntity(entity), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
}

func (c *entityCommander) AddSchemaSupport(ctx context.Context, actor Actor, id ids.EntityID, schemaID ids.SchemaID, newValues properties.ValueMap) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		class, err := tx.ClassRepo().Get(ctx, entity.ClassID)
		if err != nil {
			return err
		}
		if _, err := DeriveEntityAccessLevel(ctx, tx, class, entity, actor); err != nil {
			return err
		}
		if _, already := entity.SupportedSchemas[schemaID]; already {
			return NewConsistencyErrorf("entity %v already supports schema %d", id, schemaID)
		}

		propertyIDs, err := schemaProperties(class, schemaID)
		if err != nil {
			return err
		}
		missing := make([]ids.PropertyID, 0, len(propertyIDs))
		for _, pid := range propertyIDs {
			if _, already := entity.Values[pid]; !already {
				missing = append(missing, pid)
			}
		}

		delta := newRCDelta()
		resolved, err := c.validateAndResolveValues(ctx, tx, class, missing, newValues, entity.Controller, delta)
		if err != nil {
			return err
		}
		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}

		if entity.Values == nil {
			entity.Values = properties.ValueMap{}
		}
		for pid, v := range resolved {
			entity.Values[pid] = v
		}
		if entity.SupportedSchemas == nil {
			entity.SupportedSchemas = SchemaSupportSet{}
		}
		entity.SupportedSchemas[schemaID] = struct{}{}

		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeEntitySchemaSupportAdded, WithEntity(entity), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"schemaId": schemaID}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *entityCommander) UpdatePropertyValues(ctx context.Context, actor Actor, id ids.EntityID, updates properties.ValueMap) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		class, err := tx.ClassRepo().Get(ctx, entity.ClassID)
		if err != nil {
			return err
		}
		level, err := DeriveEntityAccessLevel(ctx, tx, class, entity, actor)
		if err != nil {
			return err
		}

		delta := newRCDelta()
		staged := make(properties.ValueMap, len(updates))
		changed := false
		for pid, newValue := range updates {
			if int(pid) >= len(class.Properties) {
				return NewNotFoundErrorf("unknown property id %d on class %v", pid, class.ID)
			}
			if _, supported := entity.Values[pid]; !supported {
				return NewConsistencyErrorf("entity %v does not support property %d", id, pid)
			}
			prop := class.Properties[pid]
			if PropertyLockedFor(prop, level, class.Permissions.AllEntityPropertyValuesLocked) {
				return NewUnauthorizedErrorf("property %q is locked for the caller's access level", prop.Name)
			}
			oldValue := entity.Values[pid]
			if oldValue.Equal(newValue) {
				continue
			}
			if err := newValue.ValidateShape(prop.Type); err != nil {
				return NewInvalidInputErrorf("property %q: %w", prop.Name, err)
			}
			if prop.Type.DataType == properties.DataTypeReference {
				for _, refID := range newValue.References(prop.Type) {
					referenced, err := tx.EntityRepo().Get(ctx, refID)
					if err != nil {
						return err
					}
					if !referenced.Referenceable {
						return NewConsistencyErrorf("entity %v is not referenceable", refID)
					}
					if prop.Type.SameController && referenced.Controller != entity.Controller {
						return NewConsistencyErrorf("property %q requires a same-controller reference", prop.Name)
					}
				}
				diffPropertyValue(prop.Type, oldValue, newValue, delta)
			}
			staged[pid] = newValue
			changed = true
		}
		if !changed {
			updated = entity
			return nil
		}

		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}
		for pid, newValue := range staged {
			entity.Values[pid] = newValue
		}
		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeEntityPropertyValuesUpdated, WithEntity(entity), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// loadVectorProperty resolves the entity, its class, the caller's access
// level and the current value at propertyID, checking that the property is
// in fact a writable vector the caller may mutate.
func (c *entityCommander) loadVectorProperty(ctx context.Context, tx Store, actor Actor, id ids.EntityID, propertyID ids.PropertyID) (*Entity, *Class, Property, properties.PropertyValue, error) {
	entity, err := tx.EntityRepo().Get(ctx, id)
	if err != nil {
		return nil, nil, Property{}, properties.PropertyValue{}, err
	}
	class, err := tx.ClassRepo().Get(ctx, entity.ClassID)
	if err != nil {
		return nil, nil, Property{}, properties.PropertyValue{}, err
	}
	level, err := DeriveEntityAccessLevel(ctx, tx, class, entity, actor)
	if err != nil {
		return nil, nil, Property{}, properties.PropertyValue{}, err
	}
	if int(propertyID) >= len(class.Properties) {
		return nil, nil, Property{}, properties.PropertyValue{}, NewNotFoundErrorf("unknown property id %d on class %v", propertyID, class.ID)
	}
	prop := class.Properties[propertyID]
	if !prop.Type.Vector {
		return nil, nil, Property{}, properties.PropertyValue{}, NewInvalidInputErrorf("property %q is not a vector", prop.Name)
	}
	if PropertyLockedFor(prop, level, class.Permissions.AllEntityPropertyValuesLocked) {
		return nil, nil, Property{}, properties.PropertyValue{}, NewUnauthorizedErrorf("property %q is locked for the caller's access level", prop.Name)
	}
	value, supported := entity.Values[propertyID]
	if !supported {
		return nil, nil, Property{}, properties.PropertyValue{}, NewConsistencyErrorf("entity %v does not support property %d", id, propertyID)
	}
	return entity, class, prop, value, nil
}

func (c *entityCommander) ClearVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, callerNonce properties.Nonce) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, _, prop, value, err := c.loadVectorProperty(ctx, tx, actor, id, propertyID)
		if err != nil {
			return err
		}
		cleared, err := value.Clear(callerNonce)
		if err != nil {
			return toDomainError(err)
		}

		delta := newRCDelta()
		diffPropertyValue(prop.Type, value, cleared, delta)
		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}

		entity.Values[propertyID] = cleared
		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeEntityVectorCleared, WithEntity(entity), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"propertyId": propertyID}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *entityCommander) InsertAtVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, index int, item properties.ScalarValue, callerNonce properties.Nonce) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, _, prop, value, err := c.loadVectorProperty(ctx, tx, actor, id, propertyID)
		if err != nil {
			return err
		}

		if prop.Type.DataType == properties.DataTypeReference && item.Reference != 0 {
			referenced, err := tx.EntityRepo().Get(ctx, item.Reference)
			if err != nil {
				return err
			}
			if !referenced.Referenceable {
				return NewConsistencyErrorf("entity %v is not referenceable", item.Reference)
			}
			if prop.Type.SameController && referenced.Controller != entity.Controller {
				return NewConsistencyErrorf("property %q requires a same-controller reference", prop.Name)
			}
		}

		next, err := value.InsertAt(prop.Type, index, item, callerNonce)
		if err != nil {
			return toDomainError(err)
		}

		delta := newRCDelta()
		if prop.Type.DataType == properties.DataTypeReference {
			delta.add(item.Reference, prop.Type.SameController, 1)
		}
		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}

		entity.Values[propertyID] = next
		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeEntityVectorIndexInserted, WithEntity(entity), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"propertyId": propertyID, "index": index}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *entityCommander) RemoveAtVectorProperty(ctx context.Context, actor Actor, id ids.EntityID, propertyID ids.PropertyID, index int, callerNonce properties.Nonce) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, actor); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, _, prop, value, err := c.loadVectorProperty(ctx, tx, actor, id, propertyID)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(value.Items) {
			return NewInvalidInputErrorf("index %d out of bounds for property %q", index, prop.Name)
		}
		removed := value.Items[index]

		next, err := value.RemoveAt(index, callerNonce)
		if err != nil {
			return toDomainError(err)
		}

		delta := newRCDelta()
		if prop.Type.DataType == properties.DataTypeReference {
			delta.add(removed.Reference, prop.Type.SameController, -1)
		}
		if err := applyRCDelta(ctx, tx, delta); err != nil {
			return err
		}

		entity.Values[propertyID] = next
		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeEntityVectorIndexRemoved, WithEntity(entity), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"propertyId": propertyID, "index": index}))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *entityCommander) UpdatePermissions(ctx context.Context, id ids.EntityID, frozen, referenceable *bool) (*Entity, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Entity
	err := c.store.Atomic(ctx, func(tx Store) error {
		entity, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if referenceable != nil && !*referenceable && entity.ReferenceCount > 0 {
			return NewConsistencyErrorf("entity %v still has %d inbound reference(s), cannot clear referenceable", id, entity.ReferenceCount)
		}
		if frozen != nil {
			entity.Frozen = *frozen
		}
		if referenceable != nil {
			entity.Referenceable = *referenceable
		}
		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}
		event, err := NewEvent(EventTypeEntityPermissionsUpdated, WithEntity(entity), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		if err := tx.EventRepo().Create(ctx, event); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// toDomainError maps the untyped sentinel/plain errors returned by
// pkg/properties value mutators onto this package's Category taxonomy.
func toDomainError(err error) error {
	if err == properties.ErrNonceMismatch {
		return NewConsistencyErrorf("%w", err)
	}
	return NewInvalidInputErrorf("%w", err)
}
