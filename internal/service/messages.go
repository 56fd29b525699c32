package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

// Member is a group member on the wire.
type Member struct {
	UserID      string `json:"user_id" validate:"required,notblank"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
}

// Group is a group with its members on the wire.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
	Members   []Member `json:"members,omitempty"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required,notblank"`
	Members []Member `json:"members" validate:"dive"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID     string `json:"group_id" validate:"required"`
	UserID      string `json:"user_id" validate:"required,notblank"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
}

type AddMemberResponse struct {
	Group Group `json:"group"`
}

// ParticipantInput is one entry of split input. Value is ignored for equal
// splits and holds an amount, a percentage or a share count otherwise.
type ParticipantInput struct {
	UserID string          `json:"user_id" validate:"required,notblank"`
	Value  decimal.Decimal `json:"value"`
}

// SplitShare is one participant's computed share.
type SplitShare struct {
	UserID string       `json:"user_id"`
	Amount money.Amount `json:"amount"`
}

type PreviewSplitRequest struct {
	Amount       money.Amount       `json:"amount"`
	SplitType    string             `json:"split_type" validate:"required,splittype"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1,dive"`
	Remainder    string             `json:"remainder,omitempty" validate:"omitempty,oneof=first last"`
}

type PreviewSplitResponse struct {
	Splits []SplitShare `json:"splits"`
}

// Expense is a stored expense on the wire.
type Expense struct {
	ID          string       `json:"id"`
	GroupID     string       `json:"group_id"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	PaidBy      string       `json:"paid_by"`
	SplitType   string       `json:"split_type"`
	Splits      []SplitShare `json:"splits"`
	CreatedAt   int64        `json:"created_at"`
	CreatedBy   string       `json:"created_by"`
}

type CreateExpenseRequest struct {
	GroupID      string             `json:"group_id" validate:"required"`
	Description  string             `json:"description,omitempty"`
	Amount       money.Amount       `json:"amount" validate:"required"`
	PaidBy       string             `json:"paid_by" validate:"required,notblank"`
	SplitType    string             `json:"split_type" validate:"required,splittype"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1,dive"`
	Remainder    string             `json:"remainder,omitempty" validate:"omitempty,oneof=first last"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// Payment is a recorded settle-up payment on the wire.
type Payment struct {
	ID         string       `json:"id"`
	GroupID    string       `json:"group_id"`
	FromUserID string       `json:"from_user_id"`
	ToUserID   string       `json:"to_user_id"`
	Amount     money.Amount `json:"amount"`
	CreatedAt  int64        `json:"created_at"`
	Note       string       `json:"note,omitempty"`
}

type RecordPaymentRequest struct {
	GroupID  string       `json:"group_id" validate:"required"`
	ToUserID string       `json:"to_user_id" validate:"required,notblank"`
	Amount   money.Amount `json:"amount" validate:"gt=0"`
	Note     string       `json:"note,omitempty" validate:"max=280"`
}

type RecordPaymentResponse struct {
	Payment Payment `json:"payment"`
}

// CounterpartyBalance is a signed balance with one person.
// Positive means they owe the viewer (or, for member balances, are owed).
type CounterpartyBalance struct {
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Amount      money.Amount `json:"amount"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	// Balances is the viewer's balance with each counterparty; settled
	// counterparties are omitted.
	Balances []CounterpartyBalance `json:"balances"`

	// MemberBalances is every member's net position in the group.
	MemberBalances []CounterpartyBalance `json:"member_balances"`

	// SkippedRecords counts malformed records left out of the computation.
	SkippedRecords int `json:"skipped_records"`
}

type GroupBalance struct {
	GroupID   string       `json:"group_id"`
	GroupName string       `json:"group_name"`
	Balance   money.Amount `json:"balance"`
}

type FriendBalance struct {
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	NetBalance  money.Amount   `json:"net_balance"`
	Groups      []GroupBalance `json:"groups"`
}

type GetFriendBalancesRequest struct{}

type GetFriendBalancesResponse struct {
	Friends []FriendBalance `json:"friends"`

	// TotalOwed is what others owe the viewer in total.
	TotalOwed money.Amount `json:"total_owed"`

	// TotalOwing is what the viewer owes others in total (non-negative).
	TotalOwing money.Amount `json:"total_owing"`
}

type Settlement struct {
	FromUserID string       `json:"from_user_id"`
	FromName   string       `json:"from_name"`
	ToUserID   string       `json:"to_user_id"`
	ToName     string       `json:"to_name"`
	Amount     money.Amount `json:"amount"`
}

type GetSettlementsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}
