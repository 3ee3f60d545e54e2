package api

import (
	"fmt"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

// ActorReq is the wire shape of an domain.Actor claim: the caller states
// which actor it claims to be, and the domain layer verifies that claim
// against the authenticated identity before trusting it for anything.
type ActorReq struct {
	Kind           domain.ActorKind   `json:"kind"`
	MemberID       auth.AccountID     `json:"memberId,omitempty"`
	CuratorGroupID ids.CuratorGroupID `json:"curatorGroupId,omitempty"`
	CuratorID      ids.CuratorID      `json:"curatorId,omitempty"`
}

// ToActor converts the wire claim into a domain.Actor, rejecting unknown kinds
// before it ever reaches ResolveActor.
func (a ActorReq) ToActor() (domain.Actor, error) {
	switch a.Kind {
	case domain.ActorKindLead:
		return domain.ActorLead(), nil
	case domain.ActorKindMember:
		return domain.ActorMember(a.MemberID), nil
	case domain.ActorKindCurator:
		return domain.ActorCurator(a.CuratorGroupID, a.CuratorID), nil
	default:
		return domain.Actor{}, fmt.Errorf("unknown actor kind %q", a.Kind)
	}
}

// ControllerResp is the wire shape of a domain.Controller.
type ControllerResp struct {
	Kind           domain.ActorKind   `json:"kind"`
	MemberID       auth.AccountID     `json:"memberId,omitempty"`
	CuratorGroupID ids.CuratorGroupID `json:"curatorGroupId,omitempty"`
}

func controllerResp(c domain.Controller) ControllerResp {
	return ControllerResp{Kind: c.Kind, MemberID: c.MemberID, CuratorGroupID: c.CuratorGroupID}
}

func (c ControllerResp) toController() domain.Controller {
	return domain.Controller{Kind: c.Kind, MemberID: c.MemberID, CuratorGroupID: c.CuratorGroupID}
}
