// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group, expense and payment storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store
type Store interface {
	// CreateGroup persists a new group together with its initial members.
	// The group.ID and group.CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group, members []models.GroupMember) error

	// GetGroup retrieves a group by its ID.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user is a member of, oldest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds members to an existing group.
	// Members that already belong to the group are left unchanged.
	AddGroupMembers(ctx context.Context, groupID string, members []models.GroupMember) error

	// ListMembers returns a group's members ordered by user ID.
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)

	// CreateExpense persists an expense and its splits.
	// The expense.ID, CreatedAt and (when empty) Description are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns a group's expenses in creation order, splits in input order.
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	// CreatePayment persists a recorded settle-up payment.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPayments returns a group's payments in creation order.
	ListPayments(ctx context.Context, groupID string) ([]models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
