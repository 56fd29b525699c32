package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/logging"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. The caller becomes its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		logging.KeyUserID, viewer,
	)

	creator := models.GroupMember{UserID: viewer, Role: models.RoleAdmin, DisplayName: middleware.GetEmail(ctx)}
	members := []models.GroupMember{creator}
	seen := map[string]bool{viewer: true}
	for _, m := range req.Msg.Members {
		if m.UserID == viewer {
			if m.DisplayName != "" {
				members[0].DisplayName = m.DisplayName
			}
			continue
		}
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		members = append(members, models.GroupMember{
			UserID:      m.UserID,
			Role:        roleOrDefault(m.Role),
			DisplayName: m.DisplayName,
		})
	}

	group := &models.Group{Name: req.Msg.Name, CreatedBy: viewer}
	if err := s.store.CreateGroup(ctx, group, members); err != nil {
		slog.Error("CreateGroup failed", logging.KeyError, err)
		return nil, toConnectError(err)
	}

	stored, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		slog.Error("CreateGroup failed to reload members", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", logging.KeyGroupID, group.ID, "members", len(stored))

	return connect.NewResponse(&CreateGroupResponse{Group: toGroup(group, stored)}), nil
}

// GetGroup returns a group and its members. Only members may read a group.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("GetGroup request received", logging.KeyGroupID, req.Msg.GroupID)

	group, _, err := loadMembers(ctx, s.store, req.Msg.GroupID, viewer)
	if err != nil {
		slog.Error("GetGroup failed", logging.KeyGroupID, req.Msg.GroupID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetGroupResponse{Group: toGroup(group, members)}), nil
}

// ListGroups returns the groups the caller belongs to, without members.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListGroups request received", logging.KeyUserID, viewer)

	groups, err := s.store.ListGroupsForUser(ctx, viewer)
	if err != nil {
		slog.Error("ListGroups failed", logging.KeyError, err)
		return nil, toConnectError(err)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g, nil)
	}

	slog.Info("ListGroups successful", "count", len(out))

	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a user to a group. Only admins may add members.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("AddMember request received",
		logging.KeyGroupID, req.Msg.GroupID,
		"member", req.Msg.UserID,
	)

	group, dir, err := loadMembers(ctx, s.store, req.Msg.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	if dir[viewer].Role != models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only group admins can add members"))
	}

	member := models.GroupMember{
		UserID:      req.Msg.UserID,
		Role:        roleOrDefault(req.Msg.Role),
		DisplayName: req.Msg.DisplayName,
	}
	if err := s.store.AddGroupMembers(ctx, group.ID, []models.GroupMember{member}); err != nil {
		slog.Error("AddMember failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member added", logging.KeyGroupID, group.ID, "member", member.UserID)

	return connect.NewResponse(&AddMemberResponse{Group: toGroup(group, members)}), nil
}

func roleOrDefault(role string) models.Role {
	if r := models.Role(role); r.Valid() {
		return r
	}
	return models.RoleMember
}
