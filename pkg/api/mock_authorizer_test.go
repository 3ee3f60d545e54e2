package api

import (
	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/domain"
)

// permissiveAuthorizer lets every call through, used by handler tests that
// exercise commander wiring and response shaping rather than the
// authorization table itself (authz.RuleBasedAuthorizer has its own tests).
type permissiveAuthorizer struct{}

func (permissiveAuthorizer) Authorize(identity *auth.Identity, action authz.Action, object authz.ObjectType, scope authz.ObjectScope) error {
	return nil
}

// denyingAuthorizer rejects every call, used to confirm a route actually has
// the AuthzSimple middleware wired in front of it.
type denyingAuthorizer struct{}

func (denyingAuthorizer) Authorize(identity *auth.Identity, action authz.Action, object authz.ObjectType, scope authz.ObjectScope) error {
	return domain.NewUnauthorizedErrorf("denied")
}
