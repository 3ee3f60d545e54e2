package database

import (
	"fmt"
	"testing"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/google/uuid"
)

func createTestClass(t *testing.T, classID ids.ClassID) *domain.Class {
	t.Helper()
	randomSuffix := uuid.New().String()
	return &domain.Class{
		ID:          classID,
		Name:        fmt.Sprintf("Test Class %s", randomSuffix),
		Description: "a class created for a database test",
		Properties:  domain.PropertyList{},
		Schemas:     domain.SchemaList{},
		Permissions: domain.ClassPermissions{
			Maintainers: map[ids.CuratorGroupID]struct{}{},
		},
		MaximumEntitiesCount:             1000,
		PerControllerEntityCreationLimit: 100,
	}
}

func createTestCuratorGroup(t *testing.T, groupID ids.CuratorGroupID) *domain.CuratorGroup {
	t.Helper()
	return &domain.CuratorGroup{
		ID:       groupID,
		Curators: domain.CuratorSet{},
		Active:   true,
	}
}

func createTestEntity(t *testing.T, entityID ids.EntityID, classID ids.ClassID, controller domain.Controller) *domain.Entity {
	t.Helper()
	return &domain.Entity{
		ID:               entityID,
		ClassID:          classID,
		Controller:       controller,
		SupportedSchemas: domain.SchemaSupportSet{},
		Values:           properties.ValueMap{},
		Referenceable:    true,
	}
}

func createTestVoucher(t *testing.T, classID ids.ClassID, controller domain.Controller, maximum uint64) *domain.EntityCreationVoucher {
	t.Helper()
	return &domain.EntityCreationVoucher{
		ClassID:                  classID,
		ControllerKind:           controller.Kind,
		ControllerMemberID:       controller.MemberID,
		ControllerCuratorGroupID: controller.CuratorGroupID,
		MaximumEntitiesCount:     maximum,
	}
}

func memberController(t *testing.T) domain.Controller {
	t.Helper()
	return domain.Controller{Kind: domain.ActorKindMember, MemberID: properties.NewUUID()}
}
