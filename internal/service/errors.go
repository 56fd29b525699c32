package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var errNotMember = errors.New("not a member of this group")

// toConnectError maps engine and storage errors to Connect codes.
func toConnectError(err error) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, calculator.ErrSplitMismatch), errors.Is(err, calculator.ErrInvalidSplit):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// viewerFrom returns the authenticated caller.
func viewerFrom(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("no authenticated user"))
	}
	return userID, nil
}

// loadMembers returns the group's member directory after checking that
// userID belongs to it.
func loadMembers(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, models.MemberDirectory, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	members, err := store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	dir := models.NewMemberDirectory(members)
	if !dir.Has(userID) {
		return nil, nil, fmt.Errorf("%w: %s", errNotMember, userID)
	}
	return group, dir, nil
}
