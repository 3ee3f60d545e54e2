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

// ClassPermissions bundles the flags and maintainer set that gate access to
// every entity of one class.
type ClassPermissions struct {
	AnyMember                      bool                              `json:"anyMember"`
	EntityCreationBlocked          bool                              `json:"entityCreationBlocked"`
	AllEntityPropertyValuesLocked  bool                              `json:"allEntityPropertyValuesLocked"`
	Maintainers                    map[ids.CuratorGroupID]struct{}   `json:"maintainers"`
}

func (p ClassPermissions) Value() (driver.Value, error) { return json.Marshal(p) }

func (p *ClassPermissions) Scan(value any) error {
	if value == nil {
		p.Maintainers = make(map[ids.CuratorGroupID]struct{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal ClassPermissions value: %v", value)
	}
	return json.Unmarshal(bytes, p)
}

func (p ClassPermissions) GormDataType() string { return "jsonb" }

// Property is a typed field declaration belonging to a class. Properties are
// append-only: once a class has N properties, property ids 0..N-1 are
// permanent even if a later property is added or the owning schema is
// deactivated.
type Property struct {
	Name                 string                  `json:"name"`
	Description          string                  `json:"description"`
	Type                 properties.PropertyType `json:"type"`
	Required             bool                    `json:"required"`
	Unique               bool                    `json:"unique"`
	LockedFromMaintainer bool                    `json:"lockedFromMaintainer"`
	LockedFromController bool                    `json:"lockedFromController"`
}

type PropertyList []Property

func (l PropertyList) Value() (driver.Value, error) { return json.Marshal(l) }

func (l *PropertyList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal PropertyList value: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l PropertyList) GormDataType() string { return "jsonb" }

// Schema is a named subset of a class's properties. Schemas are never
// removed, only (de)activated.
type Schema struct {
	PropertyIDs []ids.PropertyID `json:"propertyIds"`
	IsActive    bool             `json:"isActive"`
}

type SchemaList []Schema

func (l SchemaList) Value() (driver.Value, error) { return json.Marshal(l) }

func (l *SchemaList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal SchemaList value: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l SchemaList) GormDataType() string { return "jsonb" }

// Class is a named type declaration: a property list, an append-only set of
// schemas bundling those properties, and the permissions that gate access
// to its entities.
type Class struct {
	ID          ids.ClassID `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	Name        string `json:"name"`
	Description string `json:"description"`

	Properties  PropertyList     `json:"properties" gorm:"type:jsonb"`
	Schemas     SchemaList       `json:"schemas" gorm:"type:jsonb"`
	Permissions ClassPermissions `json:"permissions" gorm:"type:jsonb"`

	MaximumEntitiesCount              uint64 `json:"maximumEntitiesCount"`
	CurrentNumberOfEntities           uint64 `json:"currentNumberOfEntities"`
	PerControllerEntityCreationLimit  uint64 `json:"perControllerEntityCreationLimit"`
}

func (Class) TableName() string { return "classes" }

func (c *Class) GetID() ids.ClassID { return c.ID }

// ClassRepository persists classes. Classes are never deleted, so there is
// no Delete.
type ClassRepository interface {
	NextID(ctx context.Context) (ids.ClassID, error)
	Get(ctx context.Context, id ids.ClassID) (*Class, error)
	Create(ctx context.Context, class *Class) error
	Save(ctx context.Context, class *Class) error
	Exists(ctx context.Context, id ids.ClassID) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, req *PageReq) (*PageRes[Class], error)
}

// CreateClassParams is the input to Create.
type CreateClassParams struct {
	Name                              string
	Description                       string
	AnyMember                         bool
	EntityCreationBlocked             bool
	AllEntityPropertyValuesLocked     bool
	Maintainers                       []ids.CuratorGroupID
	MaximumEntitiesCount              uint64
	PerControllerEntityCreationLimit  uint64
}

// NewPropertyParams describes one property to append in AddSchema.
type NewPropertyParams struct {
	Name                 string
	Description          string
	Type                 properties.PropertyType
	Required             bool
	Unique               bool
	LockedFromMaintainer bool
	LockedFromController bool
}

// AddSchemaParams is the input to AddSchema.
type AddSchemaParams struct {
	ExistingPropertyIDs []ids.PropertyID
	NewProperties       []NewPropertyParams
}

// UpdateClassPermissionsParams carries only the fields the caller wants to
// change; nil means "leave as-is".
type UpdateClassPermissionsParams struct {
	AnyMember                     *bool
	EntityCreationBlocked         *bool
	AllEntityPropertyValuesLocked *bool
	Maintainers                   *[]ids.CuratorGroupID
}

// ClassCommander executes every lead-only class & schema mutation.
type ClassCommander interface {
	Create(ctx context.Context, params CreateClassParams) (*Class, error)
	UpdatePermissions(ctx context.Context, id ids.ClassID, params UpdateClassPermissionsParams) (*Class, error)
	AddSchema(ctx context.Context, id ids.ClassID, params AddSchemaParams) (*Class, error)
	UpdateSchemaStatus(ctx context.Context, id ids.ClassID, schemaID ids.SchemaID, active bool) (*Class, error)
}

type classCommander struct {
	store  Store
	limits Limits
}

// NewClassCommander creates a ClassCommander backed by store, enforcing the
// given Limits.
func NewClassCommander(store Store, limits Limits) ClassCommander {
	return &classCommander{store: store, limits: limits}
}

func (c *classCommander) Create(ctx context.Context, params CreateClassParams) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	if err := c.limits.ClassNameConstraint.EnsureValid(len(params.Name)); err != nil {
		return nil, NewInvalidInputErrorf("class name: %w", err)
	}
	if err := c.limits.ClassDescriptionConstraint.EnsureValid(len(params.Description)); err != nil {
		return nil, NewInvalidInputErrorf("class description: %w", err)
	}
	if params.MaximumEntitiesCount > c.limits.MaxEntitiesPerClass {
		return nil, NewInvalidInputErrorf("maximum entities count %d exceeds host limit %d", params.MaximumEntitiesCount, c.limits.MaxEntitiesPerClass)
	}
	if params.PerControllerEntityCreationLimit >= params.MaximumEntitiesCount {
		return nil, NewInvalidInputErrorf("per-controller entity creation limit must be strictly below maximum entities count")
	}
	if len(params.Maintainers) > c.limits.MaxMaintainersPerClass {
		return nil, NewQuotaErrorf("maintainers count %d exceeds limit %d", len(params.Maintainers), c.limits.MaxMaintainersPerClass)
	}

	maintainers := make(map[ids.CuratorGroupID]struct{}, len(params.Maintainers))
	for _, gid := range params.Maintainers {
		exists, err := c.store.CuratorGroupRepo().Exists(ctx, gid)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, NewNotFoundErrorf("curator group %v not found", gid)
		}
		maintainers[gid] = struct{}{}
	}

	var class *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		count, err := tx.ClassRepo().Count(ctx)
		if err != nil {
			return err
		}
		if count >= int64(c.limits.MaxClasses) {
			return NewQuotaErrorf("class limit of %d reached", c.limits.MaxClasses)
		}

		id, err := tx.ClassRepo().NextID(ctx)
		if err != nil {
			return err
		}

		class = &Class{
			ID:          id,
			Name:        params.Name,
			Description: params.Description,
			Properties:  PropertyList{},
			Schemas:     SchemaList{},
			Permissions: ClassPermissions{
				AnyMember:                     params.AnyMember,
				EntityCreationBlocked:         params.EntityCreationBlocked,
				AllEntityPropertyValuesLocked: params.AllEntityPropertyValuesLocked,
				Maintainers:                   maintainers,
			},
			MaximumEntitiesCount:             params.MaximumEntitiesCount,
			PerControllerEntityCreationLimit: params.PerControllerEntityCreationLimit,
		}
		if err := tx.ClassRepo().Create(ctx, class); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeClassCreated, WithClass(class.ID), WithInitiatorCtx(ctx))
		if err != nil {
			return err
		}
		return tx.EventRepo().Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (c *classCommander) UpdatePermissions(ctx context.Context, id ids.ClassID, params UpdateClassPermissionsParams) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		before := *class

		if params.AnyMember != nil {
			class.Permissions.AnyMember = *params.AnyMember
		}
		if params.EntityCreationBlocked != nil {
			class.Permissions.EntityCreationBlocked = *params.EntityCreationBlocked
		}
		if params.AllEntityPropertyValuesLocked != nil {
			class.Permissions.AllEntityPropertyValuesLocked = *params.AllEntityPropertyValuesLocked
		}
		if params.Maintainers != nil {
			if len(*params.Maintainers) > c.limits.MaxMaintainersPerClass {
				return NewQuotaErrorf("maintainers count %d exceeds limit %d", len(*params.Maintainers), c.limits.MaxMaintainersPerClass)
			}
			maintainers := make(map[ids.CuratorGroupID]struct{}, len(*params.Maintainers))
			for _, gid := range *params.Maintainers {
				exists, err := tx.CuratorGroupRepo().Exists(ctx, gid)
				if err != nil {
					return err
				}
				if !exists {
					return NewNotFoundErrorf("curator group %v not found", gid)
				}
				maintainers[gid] = struct{}{}
			}
			class.Permissions.Maintainers = maintainers
		}

		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeClassPermissionsUpdated, WithClass(class.ID), WithInitiatorCtx(ctx), WithDiff(before, class))
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

func (c *classCommander) AddSchema(ctx context.Context, id ids.ClassID, params AddSchemaParams) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, id)
		if err != nil {
			return err
		}

		if len(class.Schemas) >= c.limits.MaxSchemasPerClass {
			return NewQuotaErrorf("schema limit of %d reached for class %v", c.limits.MaxSchemasPerClass, id)
		}
		if len(class.Properties)+len(params.NewProperties) > c.limits.MaxPropertiesPerClass {
			return NewQuotaErrorf("property limit of %d would be exceeded for class %v", c.limits.MaxPropertiesPerClass, id)
		}

		names := make(map[string]struct{}, len(class.Properties))
		for _, p := range class.Properties {
			names[p.Name] = struct{}{}
		}

		propertyIDs := make([]ids.PropertyID, 0, len(params.ExistingPropertyIDs)+len(params.NewProperties))
		for _, pid := range params.ExistingPropertyIDs {
			if int(pid) >= len(class.Properties) {
				return NewNotFoundErrorf("unknown property id %d on class %v", pid, id)
			}
			propertyIDs = append(propertyIDs, pid)
		}

		newProps := make([]Property, 0, len(params.NewProperties))
		for _, np := range params.NewProperties {
			if _, dup := names[np.Name]; dup {
				return NewInvalidInputErrorf("property name %q is not unique within class %v", np.Name, id)
			}
			names[np.Name] = struct{}{}

			if err := c.limits.PropertyNameConstraint.EnsureValid(len(np.Name)); err != nil {
				return NewInvalidInputErrorf("property name: %w", err)
			}
			if err := c.limits.PropertyDescriptionConstraint.EnsureValid(len(np.Description)); err != nil {
				return NewInvalidInputErrorf("property description: %w", err)
			}
			if np.Type.Vector && np.Type.VecMaxLength > c.limits.VecMaxLength {
				return NewInvalidInputErrorf("vector max length %d exceeds host limit %d", np.Type.VecMaxLength, c.limits.VecMaxLength)
			}
			if np.Type.DataType == properties.DataTypeText && np.Type.TextMaxLength > c.limits.TextMaxLength {
				return NewInvalidInputErrorf("text max length %d exceeds host limit %d", np.Type.TextMaxLength, c.limits.TextMaxLength)
			}
			if np.Type.DataType == properties.DataTypeReference {
				exists, err := tx.ClassRepo().Exists(ctx, np.Type.ReferencedClass)
				if err != nil {
					return err
				}
				if !exists {
					return NewNotFoundErrorf("schema refers to unknown class %v", np.Type.ReferencedClass)
				}
			}

			newProps = append(newProps, Property{
				Name:                 np.Name,
				Description:          np.Description,
				Type:                 np.Type,
				Required:             np.Required,
				Unique:               np.Unique,
				LockedFromMaintainer: np.LockedFromMaintainer,
				LockedFromController: np.LockedFromController,
			})
		}

		baseIndex := len(class.Properties)
		class.Properties = append(class.Properties, newProps...)
		for i := range newProps {
			propertyIDs = append(propertyIDs, ids.PropertyID(baseIndex+i))
		}

		if len(propertyIDs) == 0 {
			return NewInvalidInputErrorf("schema cannot be empty")
		}

		class.Schemas = append(class.Schemas, Schema{PropertyIDs: propertyIDs, IsActive: true})

		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeClassSchemaAdded, WithClass(class.ID), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"schemaId": len(class.Schemas) - 1}))
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

func (c *classCommander) UpdateSchemaStatus(ctx context.Context, id ids.ClassID, schemaID ids.SchemaID, active bool) (*Class, error) {
	if err := ResolveActor(ctx, c.store, ActorLead()); err != nil {
		return nil, err
	}

	var updated *Class
	err := c.store.Atomic(ctx, func(tx Store) error {
		class, err := tx.ClassRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		if int(schemaID) >= len(class.Schemas) {
			return NewNotFoundErrorf("unknown schema id %d on class %v", schemaID, id)
		}
		class.Schemas[schemaID].IsActive = active

		if err := tx.ClassRepo().Save(ctx, class); err != nil {
			return err
		}

		event, err := NewEvent(EventTypeClassSchemaStatusUpdated, WithClass(class.ID), WithInitiatorCtx(ctx),
			WithPayload(map[string]any{"schemaId": schemaID, "active": active}))
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
