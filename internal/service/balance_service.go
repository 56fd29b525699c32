package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/logging"
)

// friendFanOut bounds how many groups GetFriendBalances loads at once.
const friendFanOut = 4

// BalanceService implements the Connect BalanceService: expenses, payments
// and everything computed from them.
type BalanceService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewBalanceService creates a BalanceService. m may be nil.
func NewBalanceService(store storage.Store, m *metrics.Metrics) *BalanceService {
	return &BalanceService{store: store, metrics: m}
}

// PreviewSplit computes splits without persisting anything.
func (s *BalanceService) PreviewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	splits, err := s.computeSplits(req.Msg.Amount, req.Msg.SplitType, req.Msg.Participants, req.Msg.Remainder)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]SplitShare, len(splits))
	for i, sp := range splits {
		out[i] = SplitShare{UserID: sp.UserID, Amount: sp.Amount}
	}
	return connect.NewResponse(&PreviewSplitResponse{Splits: out}), nil
}

// CreateExpense computes the splits of a new expense and stores it. Split
// errors are reported before anything is persisted.
func (s *BalanceService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	slog.Info("CreateExpense request received",
		logging.KeyGroupID, msg.GroupID,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
		"participants", len(msg.Participants),
	)

	_, dir, err := loadMembers(ctx, s.store, msg.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !dir.Has(msg.PaidBy) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("payer %s is not a group member", msg.PaidBy))
	}
	for _, p := range msg.Participants {
		if !dir.Has(p.UserID) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %s is not a group member", p.UserID))
		}
	}

	splits, err := s.computeSplits(msg.Amount, msg.SplitType, msg.Participants, msg.Remainder)
	if err != nil {
		slog.Warn("CreateExpense rejected", logging.KeyGroupID, msg.GroupID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		GroupID:     msg.GroupID,
		Description: msg.Description,
		Amount:      msg.Amount,
		PaidBy:      msg.PaidBy,
		SplitType:   models.SplitType(msg.SplitType),
		Splits:      splits,
		CreatedBy:   viewer,
	}
	// Anything the aggregators would skip as malformed must not be stored.
	if err := calculator.ValidateExpense(*expense); err != nil {
		slog.Warn("CreateExpense rejected", logging.KeyGroupID, msg.GroupID, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", logging.KeyGroupID, msg.GroupID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", logging.KeyExpenseID, expense.ID, "description", expense.Description)

	return connect.NewResponse(&CreateExpenseResponse{Expense: toExpense(expense)}), nil
}

// DeleteExpense removes an expense. The creator, the payer and group admins
// may delete it.
func (s *BalanceService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("DeleteExpense request received", logging.KeyExpenseID, req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	_, dir, err := loadMembers(ctx, s.store, expense.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	if viewer != expense.CreatedBy && viewer != expense.PaidBy && dir[viewer].Role != models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the creator, the payer or an admin can delete an expense"))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", logging.KeyExpenseID, expense.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", logging.KeyExpenseID, expense.ID)

	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// ListExpenses returns a group's expenses in creation order.
func (s *BalanceService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, _, err := loadMembers(ctx, s.store, req.Msg.GroupID, viewer); err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", logging.KeyGroupID, req.Msg.GroupID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	out := make([]Expense, len(expenses))
	for i := range expenses {
		out[i] = toExpense(&expenses[i])
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: out}), nil
}

// RecordPayment records that the caller paid another member.
func (s *BalanceService) RecordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	if msg.ToUserID == viewer {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("cannot record a payment to yourself"))
	}

	slog.Info("RecordPayment request received",
		logging.KeyGroupID, msg.GroupID,
		"to", msg.ToUserID,
		"amount", msg.Amount,
	)

	_, dir, err := loadMembers(ctx, s.store, msg.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !dir.Has(msg.ToUserID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("recipient %s is not a group member", msg.ToUserID))
	}

	payment := &models.Payment{
		GroupID:    msg.GroupID,
		FromUserID: viewer,
		ToUserID:   msg.ToUserID,
		Amount:     msg.Amount,
		CreatedBy:  viewer,
		Note:       msg.Note,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", logging.KeyGroupID, msg.GroupID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment recorded", "payment_id", payment.ID)

	return connect.NewResponse(&RecordPaymentResponse{Payment: toPayment(payment)}), nil
}

// GetGroupBalances returns the caller's balance with every counterparty in a
// group, plus every member's net position.
func (s *BalanceService) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("GetGroupBalances request received", logging.KeyGroupID, req.Msg.GroupID, logging.KeyUserID, viewer)

	_, dir, err := loadMembers(ctx, s.store, req.Msg.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	expenses, payments, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	start := time.Now()
	res := calculator.AggregateGroup(expenses, payments, viewer)
	memberBalances, _ := calculator.ComputeMemberBalances(expenses, payments)
	s.metrics.ObserveEngine("group_balances", start)
	s.reportSkipped(res.Skipped)

	out := &GetGroupBalancesResponse{
		Balances:       make([]CounterpartyBalance, 0, len(res.Balances)),
		MemberBalances: make([]CounterpartyBalance, 0, len(dir)),
		SkippedRecords: len(res.Skipped),
	}
	for _, id := range res.Balances.Counterparties() {
		out.Balances = append(out.Balances, CounterpartyBalance{UserID: id, DisplayName: dir.Name(id), Amount: res.Balances[id]})
	}
	for _, id := range models.NetBalance(memberBalances).Counterparties() {
		out.MemberBalances = append(out.MemberBalances, CounterpartyBalance{UserID: id, DisplayName: dir.Name(id), Amount: memberBalances[id]})
	}

	return connect.NewResponse(out), nil
}

// GetFriendBalances nets the caller's balances across all their groups.
// Groups are loaded concurrently; each group's computation is independent.
func (s *BalanceService) GetFriendBalances(ctx context.Context, req *connect.Request[GetFriendBalancesRequest]) (*connect.Response[GetFriendBalancesResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetFriendBalances request received", logging.KeyUserID, viewer)

	groups, err := s.store.ListGroupsForUser(ctx, viewer)
	if err != nil {
		slog.Error("GetFriendBalances failed", logging.KeyUserID, viewer, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	perGroup := make([]calculator.GroupBalances, len(groups))
	skipped := make([][]calculator.SkippedRecord, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(friendFanOut)
	for i, group := range groups {
		g.Go(func() error {
			members, err := s.store.ListMembers(gctx, group.ID)
			if err != nil {
				return fmt.Errorf("group %s: %w", group.ID, err)
			}
			expenses, payments, err := s.loadLedger(gctx, group.ID)
			if err != nil {
				return fmt.Errorf("group %s: %w", group.ID, err)
			}
			res := calculator.AggregateGroup(expenses, payments, viewer)
			perGroup[i] = calculator.GroupBalances{GroupID: group.ID, Members: members, Balances: res.Balances}
			skipped[i] = res.Skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("GetFriendBalances failed", logging.KeyUserID, viewer, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	start := time.Now()
	friends, excluded := calculator.NetFriendBalances(viewer, perGroup)
	s.metrics.ObserveEngine("friend_balances", start)
	for _, sk := range skipped {
		s.reportSkipped(sk)
	}
	s.reportSkipped(excluded)

	names := make(map[string]string, len(groups))
	for _, group := range groups {
		names[group.ID] = group.Name
	}

	out := &GetFriendBalancesResponse{Friends: make([]FriendBalance, 0, len(friends))}
	for _, f := range friends {
		fb := FriendBalance{UserID: f.CounterpartyID, DisplayName: f.DisplayName, NetBalance: f.NetBalance}
		for _, gb := range f.Groups {
			fb.Groups = append(fb.Groups, GroupBalance{GroupID: gb.GroupID, GroupName: names[gb.GroupID], Balance: gb.Balance})
		}
		out.Friends = append(out.Friends, fb)

		if f.NetBalance > 0 {
			out.TotalOwed += f.NetBalance
		} else {
			out.TotalOwing += f.NetBalance.Abs()
		}
	}

	slog.Info("GetFriendBalances successful", "groups", len(groups), "friends", len(out.Friends))

	return connect.NewResponse(out), nil
}

// GetSettlements returns payment instructions that zero every member's
// balance in a group.
func (s *BalanceService) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	viewer, err := viewerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("GetSettlements request received", logging.KeyGroupID, req.Msg.GroupID)

	_, dir, err := loadMembers(ctx, s.store, req.Msg.GroupID, viewer)
	if err != nil {
		return nil, toConnectError(err)
	}
	expenses, payments, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	start := time.Now()
	balances, skipped := calculator.ComputeMemberBalances(expenses, payments)
	settlements, err := calculator.ComputeSettlements(balances)
	s.metrics.ObserveEngine("settlements", start)
	s.reportSkipped(skipped)
	if err != nil {
		if errors.Is(err, calculator.ErrUnbalancedLedger) {
			s.metrics.UnbalancedLedger()
		}
		slog.Error("GetSettlements failed", logging.KeyGroupID, req.Msg.GroupID, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := &GetSettlementsResponse{Settlements: make([]Settlement, len(settlements))}
	for i, st := range settlements {
		out.Settlements[i] = Settlement{
			FromUserID: st.FromUserID,
			FromName:   dir.Name(st.FromUserID),
			ToUserID:   st.ToUserID,
			ToName:     dir.Name(st.ToUserID),
			Amount:     st.Amount,
		}
	}

	slog.Info("GetSettlements successful", logging.KeyGroupID, req.Msg.GroupID, "count", len(settlements))

	return connect.NewResponse(out), nil
}

func (s *BalanceService) computeSplits(amount money.Amount, splitType string, inputs []ParticipantInput, remainder string) ([]models.Split, error) {
	policy, err := calculator.ParseRemainderPolicy(remainder)
	if err != nil {
		return nil, err
	}
	participants := make([]calculator.Participant, len(inputs))
	for i, in := range inputs {
		participants[i] = calculator.Participant{UserID: in.UserID, Value: in.Value}
	}

	start := time.Now()
	defer s.metrics.ObserveEngine("split", start)
	return calculator.ComputeSplits(amount, models.SplitType(splitType), participants, calculator.WithRemainderPolicy(policy))
}

func (s *BalanceService) loadLedger(ctx context.Context, groupID string) ([]models.Expense, []models.Payment, error) {
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.store.ListPayments(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return expenses, payments, nil
}

func (s *BalanceService) reportSkipped(skipped []calculator.SkippedRecord) {
	calculator.LogSkipped(skipped)
	for _, sk := range skipped {
		s.metrics.SkippedRecord(sk.Kind)
	}
}
