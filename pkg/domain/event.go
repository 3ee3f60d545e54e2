package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/wI2L/jsondiff"
)

// InitiatorType defines the type of actor that initiated the event.
type InitiatorType string

// EventType defines the type of event. This taxonomy mirrors the
// decl_event! enumeration of the system this store's semantics are modeled
// on: exactly one event per mutating operation.
type EventType string

const (
	InitiatorTypeSystem InitiatorType = "system"
	InitiatorTypeUser   InitiatorType = "user"
)

const (
	EventTypeCuratorGroupAdded           EventType = "curator_group.added"
	EventTypeCuratorGroupRemoved         EventType = "curator_group.removed"
	EventTypeCuratorGroupStatusSet       EventType = "curator_group.status_set"
	EventTypeCuratorAdded                EventType = "curator.added"
	EventTypeCuratorRemoved              EventType = "curator.removed"
	EventTypeMaintainerAdded             EventType = "maintainer.added"
	EventTypeMaintainerRemoved           EventType = "maintainer.removed"
	EventTypeVoucherCreated              EventType = "voucher.created"
	EventTypeVoucherUpdated              EventType = "voucher.updated"
	EventTypeClassCreated                EventType = "class.created"
	EventTypeClassPermissionsUpdated     EventType = "class.permissions_updated"
	EventTypeClassSchemaAdded            EventType = "class.schema_added"
	EventTypeClassSchemaStatusUpdated    EventType = "class.schema_status_updated"
	EventTypeEntityPermissionsUpdated    EventType = "entity.permissions_updated"
	EventTypeEntityCreated               EventType = "entity.created"
	EventTypeEntityRemoved               EventType = "entity.removed"
	EventTypeEntitySchemaSupportAdded    EventType = "entity.schema_support_added"
	EventTypeEntityPropertyValuesUpdated EventType = "entity.property_values_updated"
	EventTypeEntityVectorCleared         EventType = "entity.vector_cleared"
	EventTypeEntityVectorIndexRemoved    EventType = "entity.vector_index_removed"
	EventTypeEntityVectorIndexInserted   EventType = "entity.vector_index_inserted"
	EventTypeEntityOwnershipTransferred  EventType = "entity.ownership_transferred"
	EventTypeTransactionCompleted        EventType = "transaction.completed"
)

// Event is an append-only log entry emitted on every successful mutation.
// Events never mutate state; a failed operation emits nothing.
type Event struct {
	ID        properties.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time       `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`

	SequenceNumber int64 `json:"sequenceNumber" gorm:"autoIncrement;uniqueIndex;not null"`

	InitiatorType InitiatorType `json:"initiatorType" gorm:"not null"`
	InitiatorID   string        `json:"initiatorId" gorm:"not null"`

	Type    EventType       `json:"type" gorm:"not null"`
	Payload properties.JSON `json:"payload,omitempty" gorm:"type:jsonb"`

	ClassID        *ids.ClassID        `json:"classId,omitempty" gorm:"index"`
	EntityID       *ids.EntityID       `json:"entityId,omitempty" gorm:"index"`
	CuratorGroupID *ids.CuratorGroupID `json:"curatorGroupId,omitempty" gorm:"index"`
}

func (Event) GetID() properties.UUID { return properties.UUID{} } // events are append-only, not fetched by aggregate id through BaseEntityRepository

// EventOption configures an Event being constructed by NewEvent.
type EventOption func(*Event) error

// WithClass attaches a class id to the event.
func WithClass(id ids.ClassID) EventOption {
	return func(e *Event) error {
		e.ClassID = &id
		return nil
	}
}

// WithEntity attaches an entity id (and its owning class) to the event.
func WithEntity(entity *Entity) EventOption {
	return func(e *Event) error {
		e.EntityID = &entity.ID
		e.ClassID = &entity.ClassID
		return nil
	}
}

// WithCuratorGroup attaches a curator group id to the event.
func WithCuratorGroup(id ids.CuratorGroupID) EventOption {
	return func(e *Event) error {
		e.CuratorGroupID = &id
		return nil
	}
}

// WithInitiatorCtx sets the event's initiator from the context's
// authenticated identity.
func WithInitiatorCtx(ctx context.Context) EventOption {
	return func(e *Event) error {
		identity := auth.MustGetIdentity(ctx)
		e.InitiatorType = InitiatorTypeUser
		e.InitiatorID = identity.AccountID.String()
		return nil
	}
}

// WithDiff attaches an RFC 6902 JSON patch between the before/after state
// of the entity the event describes.
func WithDiff(beforeEntity, afterEntity any) EventOption {
	return func(e *Event) error {
		beforeJSON, err := json.Marshal(beforeEntity)
		if err != nil {
			return fmt.Errorf("failed to marshal 'before' entity: %w", err)
		}
		afterJSON, err := json.Marshal(afterEntity)
		if err != nil {
			return fmt.Errorf("failed to marshal 'after' entity: %w", err)
		}
		patch, err := jsondiff.CompareJSON(beforeJSON, afterJSON, jsondiff.Invertible())
		if err != nil {
			return fmt.Errorf("failed to generate diff: %w", err)
		}
		if e.Payload == nil {
			e.Payload = properties.JSON{}
		}
		e.Payload["diff"] = patch
		return nil
	}
}

// WithPayload merges arbitrary key/value data into the event payload, used
// for fields that have no dedicated column (e.g. a removed schema id, a
// vector index, a new voucher ceiling).
func WithPayload(kv map[string]any) EventOption {
	return func(e *Event) error {
		if e.Payload == nil {
			e.Payload = properties.JSON{}
		}
		for k, v := range kv {
			e.Payload[k] = v
		}
		return nil
	}
}

// NewEvent constructs an Event, applying every option in order.
func NewEvent(eventType EventType, opts ...EventOption) (*Event, error) {
	e := &Event{
		InitiatorType: InitiatorTypeSystem,
		Type:          eventType,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply event option: %w", err)
		}
	}
	return e, nil
}

func (Event) TableName() string { return "events" }

// EventRepository stores and retrieves the event log.
type EventRepository interface {
	EventQuerier

	Create(ctx context.Context, entry *Event) error
}

// EventQuerier exposes read-only access to the event log.
type EventQuerier interface {
	ListFromSequence(ctx context.Context, fromSequenceNumber int64, limit int) ([]*Event, error)
}
