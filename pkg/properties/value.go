package properties

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/entitygraph/core/pkg/ids"
)

// Nonce guards vector-specific mutations. Every insert_at, remove_at and
// clear on a vector property bumps it by one; callers must present the
// nonce they last observed or the mutation is rejected.
type Nonce uint32

// DataType enumerates the closed taxonomy of property value data types.
type DataType int

const (
	DataTypeBool DataType = iota
	DataTypeInt64
	DataTypeText
	DataTypeHash
	DataTypeReference
)

func (t DataType) String() string {
	switch t {
	case DataTypeBool:
		return "bool"
	case DataTypeInt64:
		return "int64"
	case DataTypeText:
		return "text"
	case DataTypeHash:
		return "hash"
	case DataTypeReference:
		return "reference"
	default:
		return "unknown"
	}
}

// PropertyType is the declared shape of a property: its data type, whether
// it is single-valued or a bounded vector, and type-specific bounds.
type PropertyType struct {
	DataType        DataType    `json:"dataType"`
	Vector          bool        `json:"vector"`
	TextMaxLength   uint16      `json:"textMaxLength,omitempty"`
	VecMaxLength    uint16      `json:"vecMaxLength,omitempty"`
	ReferencedClass ids.ClassID `json:"referencedClass,omitempty"`
	SameController  bool        `json:"sameController,omitempty"`
}

// ScalarValue holds one atomic value. Exactly the field matching the
// owning PropertyType.DataType is meaningful; the rest are zero.
//
// A reference-typed scalar may name its target either by a concrete
// EntityID already committed to storage, or, within a transaction batch, by
// the index of a CreateEntity operation earlier in the same batch
// (ReferenceInternalIndex, with ReferenceFromBatch set). The batch commander
// resolves ReferenceFromBatch scalars against its scratch table of
// already-created ids before the value ever reaches entity validation;
// ReferenceFromBatch is always false by the time ValidateShape or a
// uniqueness/reference check sees the value.
type ScalarValue struct {
	Bool      bool         `json:"bool,omitempty"`
	Int64     int64        `json:"int64,omitempty"`
	Text      string       `json:"text,omitempty"`
	Hash      []byte       `json:"hash,omitempty"`
	Reference ids.EntityID `json:"reference,omitempty"`

	ReferenceFromBatch     bool `json:"referenceFromBatch,omitempty"`
	ReferenceInternalIndex int  `json:"referenceInternalIndex,omitempty"`
}

func (s ScalarValue) isDefault() bool {
	return !s.Bool && s.Int64 == 0 && s.Text == "" && len(s.Hash) == 0 && s.Reference == 0 && !s.ReferenceFromBatch
}

// Equal reports scalar value equality. ScalarValue carries a []byte field
// and so cannot use ==.
func (s ScalarValue) Equal(other ScalarValue) bool {
	return s.Bool == other.Bool && s.Int64 == other.Int64 && s.Text == other.Text &&
		bytes.Equal(s.Hash, other.Hash) && s.Reference == other.Reference &&
		s.ReferenceFromBatch == other.ReferenceFromBatch && s.ReferenceInternalIndex == other.ReferenceInternalIndex
}

// PropertyValue is the value stored against one property on one entity:
// either a single scalar or a nonce-guarded vector of scalars.
type PropertyValue struct {
	Vector bool          `json:"vector"`
	Nonce  Nonce         `json:"nonce,omitempty"`
	Single ScalarValue   `json:"single,omitempty"`
	Items  []ScalarValue `json:"items,omitempty"`
}

// NewSingle builds a non-vector value.
func NewSingle(v ScalarValue) PropertyValue {
	return PropertyValue{Vector: false, Single: v}
}

// NewVector builds a vector value at the given nonce.
func NewVector(items []ScalarValue, nonce Nonce) PropertyValue {
	return PropertyValue{Vector: true, Items: items, Nonce: nonce}
}

// IsDefault reports whether the value is the zero value for its shape —
// used to exempt non-required, never-set properties from uniqueness checks.
func (v PropertyValue) IsDefault() bool {
	if v.Vector {
		return len(v.Items) == 0
	}
	return v.Single.isDefault()
}

// References returns every entity id this value points at, regardless of
// whether it is a single reference or a vector of references. Non-reference
// values return nil.
func (v PropertyValue) References(pt PropertyType) []ids.EntityID {
	if pt.DataType != DataTypeReference {
		return nil
	}
	if v.Vector {
		out := make([]ids.EntityID, 0, len(v.Items))
		for _, it := range v.Items {
			if it.Reference != 0 {
				out = append(out, it.Reference)
			}
		}
		return out
	}
	if v.Single.Reference != 0 {
		return []ids.EntityID{v.Single.Reference}
	}
	return nil
}

// Equal reports value equality, used to detect and skip no-op updates
// (update_entity_property_values with the current values must be a no-op).
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.Vector != other.Vector {
		return false
	}
	if !v.Vector {
		return v.Single.Equal(other.Single)
	}
	if len(v.Items) != len(other.Items) {
		return false
	}
	for i := range v.Items {
		if !v.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	return true
}

// ValidateShape checks value shape against the declared property type:
// single vs vector, text length, vector element count. It does not check
// reference existence/controller or uniqueness — those require store and
// entity context and live in pkg/domain.
func (v PropertyValue) ValidateShape(pt PropertyType) error {
	if v.Vector != pt.Vector {
		return fmt.Errorf("value shape mismatch: property is vector=%v, value is vector=%v", pt.Vector, v.Vector)
	}
	if !pt.Vector {
		return validateScalarShape(v.Single, pt)
	}
	if len(v.Items) > int(pt.VecMaxLength) {
		return fmt.Errorf("vector too long: %d elements exceeds max %d", len(v.Items), pt.VecMaxLength)
	}
	for _, it := range v.Items {
		if err := validateScalarShape(it, pt); err != nil {
			return err
		}
	}
	return nil
}

func validateScalarShape(s ScalarValue, pt PropertyType) error {
	if pt.DataType == DataTypeText && len(s.Text) > int(pt.TextMaxLength) {
		return fmt.Errorf("text too long: %d bytes exceeds max %d", len(s.Text), pt.TextMaxLength)
	}
	return nil
}

// InsertAt returns a copy of the vector with v inserted at index i, bumping
// the nonce. index must be <= len(Items); the resulting length must not
// exceed pt.VecMaxLength. The caller-presented nonce must match the
// current nonce.
func (v PropertyValue) InsertAt(pt PropertyType, index int, item ScalarValue, callerNonce Nonce) (PropertyValue, error) {
	if !v.Vector {
		return v, fmt.Errorf("insert_at on non-vector property")
	}
	if callerNonce != v.Nonce {
		return v, ErrNonceMismatch
	}
	if index < 0 || index > len(v.Items) {
		return v, fmt.Errorf("index out of bounds: %d", index)
	}
	if len(v.Items)+1 > int(pt.VecMaxLength) {
		return v, fmt.Errorf("vector too long: inserting exceeds max %d", pt.VecMaxLength)
	}
	if err := validateScalarShape(item, pt); err != nil {
		return v, err
	}
	items := make([]ScalarValue, 0, len(v.Items)+1)
	items = append(items, v.Items[:index]...)
	items = append(items, item)
	items = append(items, v.Items[index:]...)
	return PropertyValue{Vector: true, Items: items, Nonce: v.Nonce + 1}, nil
}

// RemoveAt returns a copy of the vector with the element at index removed,
// bumping the nonce. index must be < len(Items).
func (v PropertyValue) RemoveAt(index int, callerNonce Nonce) (PropertyValue, error) {
	if !v.Vector {
		return v, fmt.Errorf("remove_at on non-vector property")
	}
	if callerNonce != v.Nonce {
		return v, ErrNonceMismatch
	}
	if index < 0 || index >= len(v.Items) {
		return v, fmt.Errorf("index out of bounds: %d", index)
	}
	items := make([]ScalarValue, 0, len(v.Items)-1)
	items = append(items, v.Items[:index]...)
	items = append(items, v.Items[index+1:]...)
	return PropertyValue{Vector: true, Items: items, Nonce: v.Nonce + 1}, nil
}

// Clear returns an empty vector with a bumped nonce.
func (v PropertyValue) Clear(callerNonce Nonce) (PropertyValue, error) {
	if !v.Vector {
		return v, fmt.Errorf("clear on non-vector property")
	}
	if callerNonce != v.Nonce {
		return v, ErrNonceMismatch
	}
	return PropertyValue{Vector: true, Items: nil, Nonce: v.Nonce + 1}, nil
}

// ErrNonceMismatch is returned when a caller-presented vector nonce does not
// match the value's current nonce.
var ErrNonceMismatch = fmt.Errorf("nonce mismatch")

// ValueMap is the JSONB-storable map of PropertyID -> PropertyValue held by
// an entity, mirroring the Scan/Value/GormDataType pattern the teacher uses
// for its own JSONB-backed schema types.
type ValueMap map[ids.PropertyID]PropertyValue

func (m ValueMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ValueMap) Scan(value any) error {
	if value == nil {
		*m = make(ValueMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal ValueMap value: %v", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m ValueMap) GormDataType() string {
	return "jsonb"
}

// InputValidationLengthConstraint bounds a byte-string length, represented
// as (min, maxMinDiff) so that max = min + maxMinDiff can never be less than
// min by construction.
type InputValidationLengthConstraint struct {
	Min        uint16 `json:"min"`
	MaxMinDiff uint16 `json:"maxMinDiff"`
}

// Max returns the upper bound implied by Min and MaxMinDiff.
func (c InputValidationLengthConstraint) Max() uint16 {
	return c.Min + c.MaxMinDiff
}

// EnsureValid checks that length falls within [Min, Max].
func (c InputValidationLengthConstraint) EnsureValid(length int) error {
	if length < int(c.Min) {
		return fmt.Errorf("too short: length %d is below minimum %d", length, c.Min)
	}
	if length > int(c.Max()) {
		return fmt.Errorf("too long: length %d exceeds maximum %d", length, c.Max())
	}
	return nil
}
