package service

import (
	"context"
	"net/http"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.as(t, "alice")
	bob := srv.as(t, "bob")
	dave := srv.as(t, "dave")
	ctx := context.Background()

	group := createGroup(t, alice, "Trip",
		Member{UserID: "alice", DisplayName: "Alice"},
		Member{UserID: "bob", DisplayName: "Bob"},
		Member{UserID: "carol", DisplayName: "Carol"},
	)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "alice", group.CreatedBy)
	require.Len(t, group.Members, 3)

	roles := make(map[string]string)
	for _, m := range group.Members {
		roles[m.UserID] = m.Role
	}
	assert.Equal(t, "admin", roles["alice"])
	assert.Equal(t, "member", roles["bob"])

	t.Run("get as member", func(t *testing.T) {
		resp, err := bob.groups.GetGroup.CallUnary(ctx, connect.NewRequest(&GetGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Equal(t, "Trip", resp.Msg.Group.Name)
		assert.Len(t, resp.Msg.Group.Members, 3)
	})

	t.Run("get as outsider", func(t *testing.T) {
		_, err := dave.groups.GetGroup.CallUnary(ctx, connect.NewRequest(&GetGroupRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := alice.groups.GetGroup.CallUnary(ctx, connect.NewRequest(&GetGroupRequest{GroupID: "nope"}))
		requireCode(t, connect.CodeNotFound, err)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := bob.groups.ListGroups.CallUnary(ctx, connect.NewRequest(&ListGroupsRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Groups, 1)
		assert.Equal(t, group.ID, resp.Msg.Groups[0].ID)

		resp, err = dave.groups.ListGroups.CallUnary(ctx, connect.NewRequest(&ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Empty(t, resp.Msg.Groups)
	})

	t.Run("add member requires admin", func(t *testing.T) {
		_, err := bob.groups.AddMember.CallUnary(ctx, connect.NewRequest(&AddMemberRequest{GroupID: group.ID, UserID: "dave"}))
		requireCode(t, connect.CodePermissionDenied, err)

		resp, err := alice.groups.AddMember.CallUnary(ctx, connect.NewRequest(&AddMemberRequest{
			GroupID:     group.ID,
			UserID:      "dave",
			DisplayName: "Dave",
		}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Group.Members, 4)

		_, err = dave.groups.GetGroup.CallUnary(ctx, connect.NewRequest(&GetGroupRequest{GroupID: group.ID}))
		assert.NoError(t, err)
	})
}

func TestCreateGroupValidation(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.as(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *CreateGroupRequest
	}{
		{"empty name", &CreateGroupRequest{}},
		{"blank name", &CreateGroupRequest{Name: "   "}},
		{"blank member", &CreateGroupRequest{Name: "Trip", Members: []Member{{UserID: " "}}}},
		{"bad role", &CreateGroupRequest{Name: "Trip", Members: []Member{{UserID: "bob", Role: "owner"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.groups.CreateGroup.CallUnary(ctx, connect.NewRequest(tt.req))
			requireCode(t, connect.CodeInvalidArgument, err)
		})
	}
}

func TestCreateGroupCreatorDefaults(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.as(t, "alice")

	group := createGroup(t, alice, "Flat", Member{UserID: "bob"}, Member{UserID: "bob"})
	require.Len(t, group.Members, 2)

	names := make(map[string]string)
	for _, m := range group.Members {
		names[m.UserID] = m.DisplayName
	}
	assert.Equal(t, "alice@example.com", names["alice"])
	assert.Equal(t, "bob", names["bob"])
}

func TestUnauthenticated(t *testing.T) {
	srv := newTestServer(t)
	c := NewGroupServiceClient(http.DefaultClient, srv.url)

	_, err := c.ListGroups.CallUnary(context.Background(), connect.NewRequest(&ListGroupsRequest{}))
	requireCode(t, connect.CodeUnauthenticated, err)
}
