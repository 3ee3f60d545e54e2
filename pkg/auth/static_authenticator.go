package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entitygraph/core/pkg/properties"
)

// StaticAuthenticator resolves a bearer credential into an Identity without
// talking to a persistent store. It exists because the spec places
// signed-origin authentication out of scope for the core: the host is
// expected to hand the engine an already-authenticated caller. This is the
// minimal adapter that lets the HTTP surface exercise that contract.
//
// Credential shapes:
//   - "lead:<secret>"    -> RoleLead, if secret matches the configured one
//   - "account:<uuid>"   -> RoleSigned, AccountID set to the parsed uuid
type StaticAuthenticator struct {
	leadSecret string
}

// NewStaticAuthenticator creates a StaticAuthenticator that accepts the
// given shared secret for lead credentials.
func NewStaticAuthenticator(leadSecret string) *StaticAuthenticator {
	return &StaticAuthenticator{leadSecret: leadSecret}
}

var (
	// ErrInvalidCredential is returned for a bearer token that does not
	// parse as a recognized credential shape.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Authenticate implements Authenticator.
func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (*Identity, error) {
	switch {
	case strings.HasPrefix(token, "lead:"):
		secret := strings.TrimPrefix(token, "lead:")
		if a.leadSecret == "" || secret != a.leadSecret {
			return nil, ErrInvalidCredential
		}
		return &Identity{Role: RoleLead, Name: "lead"}, nil
	case strings.HasPrefix(token, "account:"):
		raw := strings.TrimPrefix(token, "account:")
		accountID, err := properties.ParseUUID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
		return &Identity{Role: RoleSigned, AccountID: accountID, Name: accountID.String()}, nil
	default:
		return nil, ErrInvalidCredential
	}
}

// Health reports the authenticator as healthy whenever a lead secret is
// configured; without one, no caller could ever authenticate as Lead.
func (a *StaticAuthenticator) Health(_ context.Context) error {
	if a.leadSecret == "" {
		return errors.New("no lead secret configured")
	}
	return nil
}
