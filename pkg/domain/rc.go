package domain

import (
	"context"

	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
)

// rcDelta accumulates the pending reference_count and inbound_same_owner_count
// changes produced by one property write, keyed by the referenced entity.
// Deltas are applied in one pass after every value in a call has been
// diffed, so an entity referenced by two different properties in the same
// call only needs one Get/Save round trip.
type rcDelta struct {
	refCount  map[ids.EntityID]int64
	sameOwner map[ids.EntityID]int64
}

func newRCDelta() *rcDelta {
	return &rcDelta{refCount: map[ids.EntityID]int64{}, sameOwner: map[ids.EntityID]int64{}}
}

func (d *rcDelta) add(id ids.EntityID, sameController bool, delta int64) {
	if id == 0 {
		return
	}
	d.refCount[id] += delta
	if sameController {
		d.sameOwner[id] += delta
	}
}

func (d *rcDelta) isEmpty() bool {
	for _, v := range d.refCount {
		if v != 0 {
			return false
		}
	}
	for _, v := range d.sameOwner {
		if v != 0 {
			return false
		}
	}
	return true
}

func scalarItems(v properties.PropertyValue) []properties.ScalarValue {
	if v.Vector {
		return v.Items
	}
	return []properties.ScalarValue{v.Single}
}

// diffPropertyValue computes the reference-count delta of replacing oldValue
// with newValue for one reference-typed property, folding the result into
// delta. Non-reference properties contribute nothing.
//
// Vector elements are compared position by position rather than as sets: an
// element unchanged at its index contributes no delta at all, which cancels
// what would otherwise be a same-call decrement immediately followed by an
// equal increment of the same target entity. Shifting every element by one
// position (e.g. inserting at index 0) therefore still produces one
// decrement/increment pair per shifted slot; insert_at/remove_at account for
// this explicitly rather than going through this whole-value diff.
func diffPropertyValue(pt properties.PropertyType, oldValue, newValue properties.PropertyValue, delta *rcDelta) {
	if pt.DataType != properties.DataTypeReference {
		return
	}
	oldItems := scalarItems(oldValue)
	newItems := scalarItems(newValue)
	n := len(oldItems)
	if len(newItems) > n {
		n = len(newItems)
	}
	for i := 0; i < n; i++ {
		var o, v ids.EntityID
		if i < len(oldItems) {
			o = oldItems[i].Reference
		}
		if i < len(newItems) {
			v = newItems[i].Reference
		}
		if o == v {
			continue
		}
		delta.add(o, pt.SameController, -1)
		delta.add(v, pt.SameController, 1)
	}
}

// applyRCDelta loads every entity named in delta and applies its net
// reference_count / inbound_same_owner_count change. Positive deltas (new
// inbound references) are rejected if the target entity does not exist or
// is not referenceable; negative deltas underflowing past zero indicate an
// internal bug, not a caller error, and surface as ArithmeticError.
func applyRCDelta(ctx context.Context, tx Store, delta *rcDelta) error {
	if delta.isEmpty() {
		return nil
	}
	touched := make(map[ids.EntityID]struct{}, len(delta.refCount))
	for id := range delta.refCount {
		touched[id] = struct{}{}
	}
	for id := range delta.sameOwner {
		touched[id] = struct{}{}
	}

	for id := range touched {
		entity, err := tx.EntityRepo().Get(ctx, id)
		if err != nil {
			return err
		}

		rcDelta := delta.refCount[id]
		if rcDelta > 0 && !entity.Referenceable {
			return NewConsistencyErrorf("entity %v is not referenceable", id)
		}
		if rcDelta != 0 {
			next, err := addChecked(entity.ReferenceCount, rcDelta)
			if err != nil {
				return err
			}
			entity.ReferenceCount = next
		}

		soDelta := delta.sameOwner[id]
		if soDelta != 0 {
			next, err := addChecked(entity.InboundSameOwnerCount, soDelta)
			if err != nil {
				return err
			}
			entity.InboundSameOwnerCount = next
		}

		if err := tx.EntityRepo().Save(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// addChecked applies a signed delta to an unsigned counter, returning
// ArithmeticError rather than wrapping past zero.
func addChecked(current uint64, delta int64) (uint64, error) {
	if delta < 0 && uint64(-delta) > current {
		return 0, NewArithmeticErrorf("counter underflow: %d - %d", current, -delta)
	}
	if delta < 0 {
		return current - uint64(-delta), nil
	}
	return current + uint64(delta), nil
}
