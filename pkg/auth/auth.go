package auth

import (
	"context"
	"fmt"

	"github.com/entitygraph/core/pkg/properties"
)

// Role classifies what an authenticated caller is allowed to claim. The
// system's fine-grained permission model (lead / member / curator, class and
// entity level) is derived separately by the domain layer from the Actor
// each call carries (see domain.Actor) plus this coarse role: only a Lead
// identity may claim the Lead actor.
type Role string

const (
	// RoleLead identifies the chain-level administrator allowed to claim the
	// Lead actor on any call (class/schema/curator-group management,
	// ownership transfer, permission updates).
	RoleLead Role = "lead"
	// RoleSigned identifies any other authenticated account. Such callers
	// may claim the Member or Curator actor, subject to the domain layer
	// verifying the claimed member/curator id matches AccountID.
	RoleSigned Role = "signed"
)

// Validate ensures the Role is one of the predefined values.
func (r Role) Validate() error {
	switch r {
	case RoleLead, RoleSigned:
		return nil
	default:
		return fmt.Errorf("invalid auth role: %s", r)
	}
}

// AccountID is the signed caller's account identity, established by the
// host's out-of-scope signed-origin authentication. It is what the domain
// layer checks actor claims (Member(id), Curator(group, id)) against.
type AccountID = properties.UUID

// Identity is the authenticated caller resolved from a request's bearer
// credential, before any per-call Actor claim is considered.
type Identity struct {
	AccountID AccountID
	Name      string
	Role      Role
}

func (i *Identity) HasRole(role Role) bool {
	return i.Role == role
}

// Validate ensures the Identity is internally consistent.
func (i *Identity) Validate() error {
	return i.Role.Validate()
}

// Authenticator resolves a bearer credential into an Identity. The core
// treats signed-origin authentication as an external collaborator (per the
// spec's Out of scope); this interface is the seam the host implements.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
	Health(ctx context.Context) error
}
