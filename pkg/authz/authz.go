// Package authz implements the transport-level authorization gate: given an
// authenticated auth.Identity and a declared Action on an ObjectType, decide
// whether the HTTP call may even be attempted. This is deliberately coarse
// (Lead-only endpoints vs "any signed account may attempt this") — the fine
// grained, per-entity EntityAccessLevel derivation from spec §4.2 happens
// inside the domain commanders, which are the only place with access to the
// class/entity/curator-group state the derivation needs.
package authz

import (
	"fmt"

	"github.com/entitygraph/core/pkg/auth"
)

// Action represents an action attempted on an object.
type Action string

// ObjectType represents a target object type in the authorization system.
type ObjectType string

const (
	ObjectTypeCuratorGroup ObjectType = "curator_group"
	ObjectTypeClass        ObjectType = "class"
	ObjectTypeEntity       ObjectType = "entity"
	ObjectTypeVoucher      ObjectType = "voucher"
	ObjectTypeTransaction  ObjectType = "transaction"
)

const (
	ActionCreate         Action = "create"
	ActionRead           Action = "read"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionAddMaintainer  Action = "add_maintainer"
	ActionAddSchema      Action = "add_schema"
	ActionUpdateValues   Action = "update_values"
	ActionAddSchemaToEnt Action = "add_schema_support"
	ActionTransferOwner  Action = "transfer_ownership"
	ActionUpdatePerms    Action = "update_permissions"
	ActionUpdateVoucher  Action = "update_voucher"
	ActionSubmit         Action = "submit"
)

// ObjectScope narrows an authorization decision to a specific object
// instance, independent of the coarse role check.
type ObjectScope interface {
	Matches(identity *auth.Identity) bool
}

// AllwaysMatchObjectScope always matches, used for actions with no
// instance-specific restriction beyond role (e.g. "any signed account may
// attempt create_entity"; the domain layer enforces the rest).
type AllwaysMatchObjectScope struct{}

func (AllwaysMatchObjectScope) Matches(*auth.Identity) bool { return true }

// AuthorizationRule declares which roles may perform an action on an
// object type.
type AuthorizationRule struct {
	Object ObjectType
	Action Action
	Roles  []auth.Role
}

// Rules is the declarative authorization table. Lead-only administrative
// operations (spec §6 caller surface) are restricted to RoleLead; operations
// any permitted actor may call are opened to RoleSigned too, since the
// domain layer re-derives the caller's actual EntityAccessLevel from the
// claimed Actor before allowing any mutation.
var Rules = []AuthorizationRule{
	{Object: ObjectTypeCuratorGroup, Action: ActionCreate, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeCuratorGroup, Action: ActionDelete, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeCuratorGroup, Action: ActionUpdate, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeCuratorGroup, Action: ActionRead, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},

	{Object: ObjectTypeClass, Action: ActionCreate, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeClass, Action: ActionUpdatePerms, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeClass, Action: ActionAddSchema, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeClass, Action: ActionAddMaintainer, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeClass, Action: ActionRead, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},

	{Object: ObjectTypeVoucher, Action: ActionUpdateVoucher, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeVoucher, Action: ActionRead, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},

	{Object: ObjectTypeEntity, Action: ActionTransferOwner, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeEntity, Action: ActionUpdatePerms, Roles: []auth.Role{auth.RoleLead}},
	{Object: ObjectTypeEntity, Action: ActionCreate, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},
	{Object: ObjectTypeEntity, Action: ActionDelete, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},
	{Object: ObjectTypeEntity, Action: ActionUpdateValues, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},
	{Object: ObjectTypeEntity, Action: ActionAddSchemaToEnt, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},
	{Object: ObjectTypeEntity, Action: ActionRead, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},

	{Object: ObjectTypeTransaction, Action: ActionSubmit, Roles: []auth.Role{auth.RoleLead, auth.RoleSigned}},
}

// Authorizer checks whether an identity may perform an action on an object.
type Authorizer interface {
	Authorize(identity *auth.Identity, action Action, object ObjectType, scope ObjectScope) error
}

// RuleBasedAuthorizer implements Authorizer against a static rule table.
type RuleBasedAuthorizer struct {
	rules []AuthorizationRule
}

// NewRuleBasedAuthorizer creates a RuleBasedAuthorizer over the given rules.
func NewRuleBasedAuthorizer(rules []AuthorizationRule) *RuleBasedAuthorizer {
	return &RuleBasedAuthorizer{rules: rules}
}

func (a *RuleBasedAuthorizer) Authorize(identity *auth.Identity, action Action, object ObjectType, scope ObjectScope) error {
	if identity == nil {
		return fmt.Errorf("access denied: no identity")
	}
	if scope != nil && !scope.Matches(identity) {
		return fmt.Errorf("access denied: object scope does not match identity")
	}
	for _, rule := range a.rules {
		if rule.Action != action || rule.Object != object {
			continue
		}
		for _, role := range rule.Roles {
			if identity.HasRole(role) {
				return nil
			}
		}
	}
	return fmt.Errorf("access denied: no matching rule for action %q on object %q", action, object)
}
