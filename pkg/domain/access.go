package domain

// Actor, Controller and EntityAccessLevel live in pkg/domain rather than
// pkg/authz because deriving an access level needs live class/entity state
// (Store.ClassRepo/EntityRepo) that pkg/authz, sitting below pkg/domain in
// the import graph, has no way to reach. pkg/authz only gates which HTTP
// actions a Role may attempt at all; this file re-derives the caller's
// actual standing against the specific class/entity once a call is inside
// the domain layer.

import (
	"context"
	"fmt"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/ids"
)

// ActorKind is the tag of the Actor union.
type ActorKind string

const (
	ActorKindLead    ActorKind = "lead"
	ActorKindMember  ActorKind = "member"
	ActorKindCurator ActorKind = "curator"
)

// Actor is the claim a caller makes on a given call: I am the Lead, I am
// member M, or I am curator C of group G. The claim is verified against the
// authenticated identity before it is trusted for anything.
type Actor struct {
	Kind           ActorKind
	MemberID       auth.AccountID
	CuratorGroupID ids.CuratorGroupID
	CuratorID      ids.CuratorID
}

func ActorLead() Actor { return Actor{Kind: ActorKindLead} }

func ActorMember(id auth.AccountID) Actor {
	return Actor{Kind: ActorKindMember, MemberID: id}
}

func ActorCurator(group ids.CuratorGroupID, curator ids.CuratorID) Actor {
	return Actor{Kind: ActorKindCurator, CuratorGroupID: group, CuratorID: curator}
}

// ResolveActor verifies that the authenticated identity in ctx is entitled
// to make the claimed Actor claim, returning UnauthorizedError otherwise.
func ResolveActor(ctx context.Context, store Store, actor Actor) error {
	identity := auth.MustGetIdentity(ctx)
	switch actor.Kind {
	case ActorKindLead:
		if identity.Role != auth.RoleLead {
			return NewUnauthorizedErrorf("caller is not lead")
		}
		return nil
	case ActorKindMember:
		if identity.AccountID != actor.MemberID {
			return NewUnauthorizedErrorf("caller account does not match claimed member")
		}
		return nil
	case ActorKindCurator:
		if actor.CuratorID != identity.AccountID {
			return NewUnauthorizedErrorf("caller account does not match claimed curator id")
		}
		group, err := store.CuratorGroupRepo().Get(ctx, actor.CuratorGroupID)
		if err != nil {
			return err
		}
		if _, ok := group.Curators[actor.CuratorID]; !ok {
			return NewUnauthorizedErrorf("caller is not a curator of group %v", actor.CuratorGroupID)
		}
		return nil
	default:
		return NewUnauthorizedErrorf("unknown actor kind %q", actor.Kind)
	}
}

// Controller is the owning principal of an entity, derived from the actor
// that created it: curator collapses to the group, since ownership and
// maintenance are both group-level concepts.
type Controller struct {
	Kind           ActorKind
	MemberID       auth.AccountID
	CuratorGroupID ids.CuratorGroupID
}

func ControllerFromActor(actor Actor) Controller {
	switch actor.Kind {
	case ActorKindMember:
		return Controller{Kind: ActorKindMember, MemberID: actor.MemberID}
	case ActorKindCurator:
		return Controller{Kind: ActorKindCurator, CuratorGroupID: actor.CuratorGroupID}
	default:
		return Controller{Kind: ActorKindLead}
	}
}

func (c Controller) String() string {
	switch c.Kind {
	case ActorKindMember:
		return fmt.Sprintf("member:%s", c.MemberID)
	case ActorKindCurator:
		return fmt.Sprintf("curator-group:%v", c.CuratorGroupID)
	default:
		return "lead"
	}
}

// EntityAccessLevel is the standing an actor has been granted against one
// specific entity for the duration of one call.
type EntityAccessLevel int

const (
	// AccessDeniedLevel is never returned; DeriveEntityAccessLevel returns an
	// UnauthorizedError instead. It exists only so the zero value is distinct
	// from every valid level.
	AccessDeniedLevel EntityAccessLevel = iota
	EntityControllerLevel
	EntityMaintainerLevel
	AnyLevel
)

// DeriveEntityAccessLevel resolves the tuple (identity, entity, class, actor)
// into the access level the caller holds for this one call, per spec §4.2.
func DeriveEntityAccessLevel(ctx context.Context, store Store, class *Class, entity *Entity, actor Actor) (EntityAccessLevel, error) {
	identity := auth.MustGetIdentity(ctx)
	if err := ResolveActor(ctx, store, actor); err != nil {
		return AccessDeniedLevel, err
	}

	if ControllerFromActor(actor) == entity.Controller {
		if entity.Frozen {
			return AccessDeniedLevel, NewUnauthorizedErrorf("entity %v is frozen", entity.ID)
		}
		return EntityControllerLevel, nil
	}

	if actor.Kind == ActorKindCurator {
		if _, isMaintainer := class.Permissions.Maintainers[actor.CuratorGroupID]; isMaintainer {
			group, err := store.CuratorGroupRepo().Get(ctx, actor.CuratorGroupID)
			if err != nil {
				return AccessDeniedLevel, err
			}
			if group.Active {
				return EntityMaintainerLevel, nil
			}
		}
	}

	if class.Permissions.AnyMember && identity.Role == auth.RoleSigned {
		return AnyLevel, nil
	}

	return AccessDeniedLevel, NewUnauthorizedErrorf("actor has no standing on entity %v", entity.ID)
}

// PropertyLockedFor reports whether prop may not be written by a caller
// holding the given access level.
func PropertyLockedFor(prop Property, level EntityAccessLevel, classLocked bool) bool {
	if classLocked {
		return true
	}
	switch level {
	case EntityControllerLevel:
		return prop.LockedFromController
	case EntityMaintainerLevel:
		return prop.LockedFromMaintainer
	default:
		return false
	}
}
