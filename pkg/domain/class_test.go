package domain_test

import (
	"context"
	"testing"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/database"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadCtx() context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		AccountID: properties.NewUUID(),
		Role:      auth.RoleLead,
	})
}

func signedCtx(account properties.UUID) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		AccountID: account,
		Role:      auth.RoleSigned,
	})
}

func newClassCommander(t *testing.T) (domain.ClassCommander, domain.Store) {
	t.Helper()
	store := database.NewMemStore()
	return domain.NewClassCommander(store, domain.DefaultLimits()), store
}

func TestClassCommander_Create(t *testing.T) {
	cmd, _ := newClassCommander(t)

	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name:                             "video",
		Description:                      "a video entity",
		MaximumEntitiesCount:             100,
		PerControllerEntityCreationLimit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, ids.ClassID(1), class.ID)
	assert.Equal(t, "video", class.Name)
	assert.Empty(t, class.Properties)
	assert.Empty(t, class.Schemas)
}

func TestClassCommander_Create_RejectsNonLeadActor(t *testing.T) {
	cmd, _ := newClassCommander(t)

	_, err := cmd.Create(signedCtx(properties.NewUUID()), domain.CreateClassParams{
		Name:                             "video",
		MaximumEntitiesCount:             100,
		PerControllerEntityCreationLimit: 10,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryAuthorization, domain.CategoryOf(err))
}

func TestClassCommander_Create_RejectsPerControllerLimitAtOrAboveMax(t *testing.T) {
	cmd, _ := newClassCommander(t)

	_, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name:                             "video",
		MaximumEntitiesCount:             10,
		PerControllerEntityCreationLimit: 10,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
}

func TestClassCommander_Create_RejectsUnknownMaintainer(t *testing.T) {
	cmd, _ := newClassCommander(t)

	_, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name:                             "video",
		MaximumEntitiesCount:             10,
		PerControllerEntityCreationLimit: 1,
		Maintainers:                      []ids.CuratorGroupID{42},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryExistence, domain.CategoryOf(err))
}

func TestClassCommander_AddSchema(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	updated, err := cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{
		NewProperties: []domain.NewPropertyParams{
			{Name: "title", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 256}, Required: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Schemas, 1)
	assert.True(t, updated.Schemas[0].IsActive)
	assert.Equal(t, []ids.PropertyID{0}, updated.Schemas[0].PropertyIDs)
	require.Len(t, updated.Properties, 1)
	assert.Equal(t, "title", updated.Properties[0].Name)
}

func TestClassCommander_AddSchema_RejectsDuplicatePropertyName(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	newProp := domain.NewPropertyParams{
		Name: "title", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 256},
	}
	_, err = cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{NewProperties: []domain.NewPropertyParams{newProp}})
	require.NoError(t, err)

	_, err = cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{NewProperties: []domain.NewPropertyParams{newProp}})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
}

func TestClassCommander_AddSchema_RejectsUnknownReferencedClass(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	_, err = cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{
		NewProperties: []domain.NewPropertyParams{
			{Name: "channel", Type: properties.PropertyType{DataType: properties.DataTypeReference, ReferencedClass: 999}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryExistence, domain.CategoryOf(err))
}

func TestClassCommander_AddSchema_RejectsEmptySchema(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	_, err = cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.CategoryOf(err))
}

func TestClassCommander_UpdateSchemaStatus(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)
	class, err = cmd.AddSchema(leadCtx(), class.ID, domain.AddSchemaParams{
		NewProperties: []domain.NewPropertyParams{
			{Name: "title", Type: properties.PropertyType{DataType: properties.DataTypeText, TextMaxLength: 256}},
		},
	})
	require.NoError(t, err)

	updated, err := cmd.UpdateSchemaStatus(leadCtx(), class.ID, 0, false)
	require.NoError(t, err)
	assert.False(t, updated.Schemas[0].IsActive)
}

func TestClassCommander_UpdateSchemaStatus_RejectsUnknownSchema(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	_, err = cmd.UpdateSchemaStatus(leadCtx(), class.ID, 5, true)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryExistence, domain.CategoryOf(err))
}

func TestClassCommander_UpdatePermissions(t *testing.T) {
	cmd, _ := newClassCommander(t)
	class, err := cmd.Create(leadCtx(), domain.CreateClassParams{
		Name: "video", MaximumEntitiesCount: 10, PerControllerEntityCreationLimit: 1,
	})
	require.NoError(t, err)

	anyMember := true
	updated, err := cmd.UpdatePermissions(leadCtx(), class.ID, domain.UpdateClassPermissionsParams{
		AnyMember: &anyMember,
	})
	require.NoError(t, err)
	assert.True(t, updated.Permissions.AnyMember)
}
