package api

import (
	"testing"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorReq_ToActor(t *testing.T) {
	memberID := properties.NewUUID()
	curatorID := properties.NewUUID()

	testCases := []struct {
		name    string
		req     ActorReq
		want    domain.Actor
		wantErr bool
	}{
		{
			name: "lead",
			req:  ActorReq{Kind: domain.ActorKindLead},
			want: domain.ActorLead(),
		},
		{
			name: "member",
			req:  ActorReq{Kind: domain.ActorKindMember, MemberID: memberID},
			want: domain.ActorMember(memberID),
		},
		{
			name: "curator",
			req:  ActorReq{Kind: domain.ActorKindCurator, CuratorGroupID: 7, CuratorID: curatorID},
			want: domain.ActorCurator(7, curatorID),
		},
		{
			name:    "unknown kind",
			req:     ActorReq{Kind: "bogus"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actor, err := tc.req.ToActor()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, actor)
		})
	}
}

func TestControllerResp_RoundTrip(t *testing.T) {
	member := properties.NewUUID()
	controller := domain.Controller{Kind: domain.ActorKindMember, MemberID: member}

	resp := controllerResp(controller)
	assert.Equal(t, domain.ActorKindMember, resp.Kind)
	assert.Equal(t, member, resp.MemberID)
	assert.Equal(t, ids.CuratorGroupID(0), resp.CuratorGroupID)

	assert.Equal(t, controller, resp.toController())
}
