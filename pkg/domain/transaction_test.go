package domain_test

import (
	"testing"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionCommander_CreatesEveryEntityInOrder(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	ops := []domain.BatchOperation{
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "widget"})}},
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "gadget"})}},
	}
	created, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.NoError(t, err)
	require.Len(t, created, 2)

	first, err := f.store.EntityRepo().Get(signedCtx(f.account), created[0])
	require.NoError(t, err)
	assert.Equal(t, "widget", first.Values[0].Single.Text)

	second, err := f.store.EntityRepo().Get(signedCtx(f.account), created[1])
	require.NoError(t, err)
	assert.Equal(t, "gadget", second.Values[0].Single.Text)
}

func TestTransactionCommander_TargetResolvesFromBatchIndex(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	ops := []domain.BatchOperation{
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "widget"})}},
		{
			Kind:   domain.BatchOpUpdatePropertyValues,
			Target: domain.EntityRef{FromBatch: true, InternalIndex: 0},
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "renamed"})},
		},
	}
	created, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.NoError(t, err)
	require.Len(t, created, 1)

	entity, err := f.store.EntityRepo().Get(signedCtx(f.account), created[0])
	require.NoError(t, err)
	assert.Equal(t, "renamed", entity.Values[0].Single.Text)
}

func TestTransactionCommander_ValueResolvesFromBatchIndex(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	ops := []domain.BatchOperation{
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "widget"})}},
		{Kind: domain.BatchOpCreateEntity, ClassID: f.containerClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{ReferenceFromBatch: true, ReferenceInternalIndex: 0})}},
	}
	created, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.NoError(t, err)
	require.Len(t, created, 2)

	container, err := f.store.EntityRepo().Get(signedCtx(f.account), created[1])
	require.NoError(t, err)
	assert.Equal(t, created[0], container.Values[0].Single.Reference)
}

func TestTransactionCommander_RejectsEmptyBatch(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	_, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), nil)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
}

func TestTransactionCommander_RejectsBatchOverLimit(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.Limits{MaxOpsPerBatch: 1}, f.entityCmd)

	ops := []domain.BatchOperation{
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "a"})}},
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "b"})}},
	}
	_, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryQuota, domain.CategoryOf(err))
}

func TestTransactionCommander_RejectsForwardBatchReference(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	ops := []domain.BatchOperation{
		{Kind: domain.BatchOpCreateEntity, ClassID: f.itemClassID, SchemaID: 0,
			Values: properties.ValueMap{0: properties.NewSingle(properties.ScalarValue{Text: "widget"})}},
		{Kind: domain.BatchOpAddSchemaSupport, Target: domain.EntityRef{FromBatch: true, InternalIndex: 5}},
	}
	_, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryConsistency, domain.CategoryOf(err))
}

func TestTransactionCommander_RejectsUnknownOperationKind(t *testing.T) {
	f := newEntityFixture(t)
	txCmd := domain.NewTransactionCommander(f.store, domain.DefaultLimits(), f.entityCmd)

	ops := []domain.BatchOperation{{Kind: "not_a_real_op"}}
	_, err := txCmd.Execute(signedCtx(f.account), domain.ActorMember(f.account), ops)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
}
