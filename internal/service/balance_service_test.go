package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equalAmong(ids ...string) []ParticipantInput {
	out := make([]ParticipantInput, len(ids))
	for i, id := range ids {
		out[i] = ParticipantInput{UserID: id}
	}
	return out
}

func valued(pairs ...string) []ParticipantInput {
	var out []ParticipantInput
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, ParticipantInput{UserID: pairs[i], Value: decimal.RequireFromString(pairs[i+1])})
	}
	return out
}

func amounts(balances []CounterpartyBalance) map[string]string {
	out := make(map[string]string, len(balances))
	for _, b := range balances {
		out[b.UserID] = b.Amount.String()
	}
	return out
}

func trio(t *testing.T, srv *testServer) (alice, bob, carol clients, group Group) {
	t.Helper()
	alice, bob, carol = srv.as(t, "alice"), srv.as(t, "bob"), srv.as(t, "carol")
	group = createGroup(t, alice, "Dinner",
		Member{UserID: "alice", DisplayName: "Alice"},
		Member{UserID: "bob", DisplayName: "Bob"},
		Member{UserID: "carol", DisplayName: "Carol"},
	)
	return alice, bob, carol, group
}

func TestBalanceFlow(t *testing.T) {
	srv := newTestServer(t)
	alice, bob, carol, group := trio(t, srv)
	ctx := context.Background()

	created, err := alice.balances.CreateExpense.CallUnary(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID:      group.ID,
		Amount:       amt("100.00"),
		PaidBy:       "alice",
		SplitType:    "equal",
		Participants: equalAmong("alice", "bob", "carol"),
		Remainder:    "first",
	}))
	require.NoError(t, err)
	exp := created.Msg.Expense
	assert.Equal(t, "Split with Alice, Bob, Carol", exp.Description)
	require.Len(t, exp.Splits, 3)
	assert.Equal(t, "33.34", exp.Splits[0].Amount.String())
	assert.Equal(t, "33.33", exp.Splits[1].Amount.String())
	assert.Equal(t, "33.33", exp.Splits[2].Amount.String())

	balances := func(c clients) *GetGroupBalancesResponse {
		resp, err := c.balances.GetGroupBalances.CallUnary(ctx, connect.NewRequest(&GetGroupBalancesRequest{GroupID: group.ID}))
		require.NoError(t, err)
		return resp.Msg
	}

	got := balances(alice)
	assert.Equal(t, map[string]string{"bob": "33.33", "carol": "33.33"}, amounts(got.Balances))
	assert.Equal(t, map[string]string{"alice": "66.66", "bob": "-33.33", "carol": "-33.33"}, amounts(got.MemberBalances))
	assert.Equal(t, "Bob", got.Balances[0].DisplayName)
	assert.Zero(t, got.SkippedRecords)

	assert.Equal(t, map[string]string{"alice": "-33.33"}, amounts(balances(bob).Balances))

	_, err = bob.balances.RecordPayment.CallUnary(ctx, connect.NewRequest(&RecordPaymentRequest{
		GroupID:  group.ID,
		ToUserID: "alice",
		Amount:   amt("33.33"),
		Note:     "cash",
	}))
	require.NoError(t, err)

	assert.Empty(t, balances(bob).Balances)
	assert.Equal(t, map[string]string{"carol": "33.33"}, amounts(balances(alice).Balances))

	settle, err := carol.balances.GetSettlements.CallUnary(ctx, connect.NewRequest(&GetSettlementsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, settle.Msg.Settlements, 1)
	st := settle.Msg.Settlements[0]
	assert.Equal(t, "carol", st.FromUserID)
	assert.Equal(t, "Carol", st.FromName)
	assert.Equal(t, "alice", st.ToUserID)
	assert.Equal(t, "Alice", st.ToName)
	assert.Equal(t, "33.33", st.Amount.String())

	list, err := bob.balances.ListExpenses.CallUnary(ctx, connect.NewRequest(&ListExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 1)
	assert.Equal(t, exp.ID, list.Msg.Expenses[0].ID)
}

func TestCreateExpenseErrors(t *testing.T) {
	srv := newTestServer(t)
	alice, _, _, group := trio(t, srv)
	dave := srv.as(t, "dave")
	ctx := context.Background()

	tests := []struct {
		name   string
		caller clients
		req    *CreateExpenseRequest
		code   connect.Code
	}{
		{
			name:   "exact mismatch",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "exact",
				Participants: valued("alice", "50", "bob", "40")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "percentages off",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "percentage",
				Participants: valued("alice", "50", "bob", "45")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "zero shares",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "shares",
				Participants: valued("alice", "0", "bob", "0")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "unknown split type",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "weighted",
				Participants: equalAmong("alice")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "payer not a member",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "dave", SplitType: "equal",
				Participants: equalAmong("alice", "bob")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "participant not a member",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "equal",
				Participants: equalAmong("alice", "dave")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "payer is the only participant",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "equal",
				Participants: equalAmong("alice")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "no participants",
			caller: alice,
			req:    &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "equal"},
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "zero amount",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: group.ID, PaidBy: "alice", SplitType: "equal",
				Participants: equalAmong("alice", "bob")},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "caller not a member",
			caller: dave,
			req: &CreateExpenseRequest{GroupID: group.ID, Amount: amt("100"), PaidBy: "alice", SplitType: "equal",
				Participants: equalAmong("alice", "bob")},
			code: connect.CodePermissionDenied,
		},
		{
			name:   "missing group",
			caller: alice,
			req: &CreateExpenseRequest{GroupID: "missing", Amount: amt("100"), PaidBy: "alice", SplitType: "equal",
				Participants: equalAmong("alice", "bob")},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.caller.balances.CreateExpense.CallUnary(ctx, connect.NewRequest(tt.req))
			requireCode(t, tt.code, err)
		})
	}

	list, err := alice.balances.ListExpenses.CallUnary(ctx, connect.NewRequest(&ListExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Expenses, "rejected expenses must not be stored")
}

func TestPreviewSplit(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.as(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *PreviewSplitRequest
		want []string
	}{
		{
			name: "equal default remainder",
			req:  &PreviewSplitRequest{Amount: amt("100"), SplitType: "equal", Participants: equalAmong("a", "b", "c")},
			want: []string{"33.33", "33.33", "33.34"},
		},
		{
			name: "percentage",
			req: &PreviewSplitRequest{Amount: amt("200"), SplitType: "percentage",
				Participants: valued("a", "50", "b", "30", "c", "20")},
			want: []string{"100.00", "60.00", "40.00"},
		},
		{
			name: "shares",
			req: &PreviewSplitRequest{Amount: amt("90"), SplitType: "shares",
				Participants: valued("a", "2", "b", "1")},
			want: []string{"60.00", "30.00"},
		},
		{
			name: "refund",
			req:  &PreviewSplitRequest{Amount: amt("-10"), SplitType: "equal", Participants: equalAmong("a", "b", "c")},
			want: []string{"-3.33", "-3.33", "-3.34"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := alice.balances.PreviewSplit.CallUnary(ctx, connect.NewRequest(tt.req))
			require.NoError(t, err)
			got := make([]string, len(resp.Msg.Splits))
			for i, s := range resp.Msg.Splits {
				got[i] = s.Amount.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := alice.balances.PreviewSplit.CallUnary(ctx, connect.NewRequest(&PreviewSplitRequest{
		Amount: amt("10"), SplitType: "equal", Participants: equalAmong("a", "b"), Remainder: "middle",
	}))
	requireCode(t, connect.CodeInvalidArgument, err)
}

func TestDeleteExpense(t *testing.T) {
	srv := newTestServer(t)
	alice, bob, carol, group := trio(t, srv)
	ctx := context.Background()

	created, err := bob.balances.CreateExpense.CallUnary(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID:      group.ID,
		Description:  "Taxi",
		Amount:       amt("30"),
		PaidBy:       "bob",
		SplitType:    "equal",
		Participants: equalAmong("alice", "bob", "carol"),
	}))
	require.NoError(t, err)
	id := created.Msg.Expense.ID
	assert.Equal(t, "Taxi", created.Msg.Expense.Description)

	_, err = carol.balances.DeleteExpense.CallUnary(ctx, connect.NewRequest(&DeleteExpenseRequest{ExpenseID: id}))
	requireCode(t, connect.CodePermissionDenied, err)

	// Admins may delete expenses they neither created nor paid.
	_, err = alice.balances.DeleteExpense.CallUnary(ctx, connect.NewRequest(&DeleteExpenseRequest{ExpenseID: id}))
	require.NoError(t, err)

	_, err = alice.balances.DeleteExpense.CallUnary(ctx, connect.NewRequest(&DeleteExpenseRequest{ExpenseID: id}))
	requireCode(t, connect.CodeNotFound, err)

	resp, err := carol.balances.GetGroupBalances.CallUnary(ctx, connect.NewRequest(&GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Balances)
}

func TestRecordPaymentErrors(t *testing.T) {
	srv := newTestServer(t)
	alice, _, _, group := trio(t, srv)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RecordPaymentRequest
	}{
		{"to self", &RecordPaymentRequest{GroupID: group.ID, ToUserID: "alice", Amount: amt("5")}},
		{"zero", &RecordPaymentRequest{GroupID: group.ID, ToUserID: "bob"}},
		{"negative", &RecordPaymentRequest{GroupID: group.ID, ToUserID: "bob", Amount: amt("-5")}},
		{"outsider", &RecordPaymentRequest{GroupID: group.ID, ToUserID: "dave", Amount: amt("5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.balances.RecordPayment.CallUnary(ctx, connect.NewRequest(tt.req))
			requireCode(t, connect.CodeInvalidArgument, err)
		})
	}
}

func TestGetFriendBalances(t *testing.T) {
	srv := newTestServer(t)
	alice, bob := srv.as(t, "alice"), srv.as(t, "bob")
	ctx := context.Background()

	lunch := createGroup(t, alice, "Lunch",
		Member{UserID: "alice", DisplayName: "Alice"},
		Member{UserID: "bob", DisplayName: "Bob"},
	)
	trip := createGroup(t, bob, "Trip",
		Member{UserID: "alice", DisplayName: "Alice"},
		Member{UserID: "bob", DisplayName: "Bob"},
		Member{UserID: "carol", DisplayName: "Carol"},
	)

	_, err := alice.balances.CreateExpense.CallUnary(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID: lunch.ID, Amount: amt("50"), PaidBy: "alice", SplitType: "equal",
		Participants: equalAmong("alice", "bob"),
	}))
	require.NoError(t, err)
	_, err = bob.balances.CreateExpense.CallUnary(ctx, connect.NewRequest(&CreateExpenseRequest{
		GroupID: trip.ID, Amount: amt("30"), PaidBy: "bob", SplitType: "equal",
		Participants: equalAmong("alice", "bob", "carol"),
	}))
	require.NoError(t, err)

	resp, err := alice.balances.GetFriendBalances.CallUnary(ctx, connect.NewRequest(&GetFriendBalancesRequest{}))
	require.NoError(t, err)

	// Carol owes Bob, not Alice, so she does not appear.
	require.Len(t, resp.Msg.Friends, 1)
	friend := resp.Msg.Friends[0]
	assert.Equal(t, "bob", friend.UserID)
	assert.Equal(t, "Bob", friend.DisplayName)
	assert.Equal(t, "15.00", friend.NetBalance.String())

	perGroup := make(map[string]string)
	names := make(map[string]string)
	for _, g := range friend.Groups {
		perGroup[g.GroupID] = g.Balance.String()
		names[g.GroupID] = g.GroupName
	}
	assert.Equal(t, map[string]string{lunch.ID: "25.00", trip.ID: "-10.00"}, perGroup)
	assert.Equal(t, "Lunch", names[lunch.ID])
	assert.Equal(t, "15.00", resp.Msg.TotalOwed.String())
	assert.True(t, resp.Msg.TotalOwing.IsZero())

	resp, err = bob.balances.GetFriendBalances.CallUnary(ctx, connect.NewRequest(&GetFriendBalancesRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Friends, 2)
	assert.Equal(t, "alice", resp.Msg.Friends[0].UserID)
	assert.Equal(t, "-15.00", resp.Msg.Friends[0].NetBalance.String())
	assert.Equal(t, "carol", resp.Msg.Friends[1].UserID)
	assert.Equal(t, "10.00", resp.Msg.Friends[1].NetBalance.String())
	assert.Equal(t, "10.00", resp.Msg.TotalOwed.String())
	assert.Equal(t, "15.00", resp.Msg.TotalOwing.String())
}
