package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/rpc"
)

const (
	// GroupServiceName is the fully-qualified name of the GroupService.
	GroupServiceName = "settleup.v1.GroupService"
	// BalanceServiceName is the fully-qualified name of the BalanceService.
	BalanceServiceName = "settleup.v1.BalanceService"
)

// Procedure paths.
const (
	CreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GetGroupProcedure    = "/" + GroupServiceName + "/GetGroup"
	ListGroupsProcedure  = "/" + GroupServiceName + "/ListGroups"
	AddMemberProcedure   = "/" + GroupServiceName + "/AddMember"

	PreviewSplitProcedure      = "/" + BalanceServiceName + "/PreviewSplit"
	CreateExpenseProcedure     = "/" + BalanceServiceName + "/CreateExpense"
	DeleteExpenseProcedure     = "/" + BalanceServiceName + "/DeleteExpense"
	ListExpensesProcedure      = "/" + BalanceServiceName + "/ListExpenses"
	RecordPaymentProcedure     = "/" + BalanceServiceName + "/RecordPayment"
	GetGroupBalancesProcedure  = "/" + BalanceServiceName + "/GetGroupBalances"
	GetFriendBalancesProcedure = "/" + BalanceServiceName + "/GetFriendBalances"
	GetSettlementsProcedure    = "/" + BalanceServiceName + "/GetSettlements"
)

// Register mounts every GroupService procedure on mux.
func (s *GroupService) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	o := rpc.HandlerOptions(opts...)
	mux.Handle(CreateGroupProcedure, connect.NewUnaryHandler(CreateGroupProcedure, s.CreateGroup, o...))
	mux.Handle(GetGroupProcedure, connect.NewUnaryHandler(GetGroupProcedure, s.GetGroup, o...))
	mux.Handle(ListGroupsProcedure, connect.NewUnaryHandler(ListGroupsProcedure, s.ListGroups, o...))
	mux.Handle(AddMemberProcedure, connect.NewUnaryHandler(AddMemberProcedure, s.AddMember, o...))
}

// Register mounts every BalanceService procedure on mux.
func (s *BalanceService) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	o := rpc.HandlerOptions(opts...)
	mux.Handle(PreviewSplitProcedure, connect.NewUnaryHandler(PreviewSplitProcedure, s.PreviewSplit, o...))
	mux.Handle(CreateExpenseProcedure, connect.NewUnaryHandler(CreateExpenseProcedure, s.CreateExpense, o...))
	mux.Handle(DeleteExpenseProcedure, connect.NewUnaryHandler(DeleteExpenseProcedure, s.DeleteExpense, o...))
	mux.Handle(ListExpensesProcedure, connect.NewUnaryHandler(ListExpensesProcedure, s.ListExpenses, o...))
	mux.Handle(RecordPaymentProcedure, connect.NewUnaryHandler(RecordPaymentProcedure, s.RecordPayment, o...))
	mux.Handle(GetGroupBalancesProcedure, connect.NewUnaryHandler(GetGroupBalancesProcedure, s.GetGroupBalances, o...))
	mux.Handle(GetFriendBalancesProcedure, connect.NewUnaryHandler(GetFriendBalancesProcedure, s.GetFriendBalances, o...))
	mux.Handle(GetSettlementsProcedure, connect.NewUnaryHandler(GetSettlementsProcedure, s.GetSettlements, o...))
}

// GroupServiceClient calls a remote GroupService.
type GroupServiceClient struct {
	CreateGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	GetGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	ListGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
	AddMember   *connect.Client[AddMemberRequest, AddMemberResponse]
}

// NewGroupServiceClient creates a client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	o := rpc.ClientOptions(opts...)
	return &GroupServiceClient{
		CreateGroup: connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+CreateGroupProcedure, o...),
		GetGroup:    connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GetGroupProcedure, o...),
		ListGroups:  connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+ListGroupsProcedure, o...),
		AddMember:   connect.NewClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL+AddMemberProcedure, o...),
	}
}

// BalanceServiceClient calls a remote BalanceService.
type BalanceServiceClient struct {
	PreviewSplit      *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
	CreateExpense     *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	DeleteExpense     *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	ListExpenses      *connect.Client[ListExpensesRequest, ListExpensesResponse]
	RecordPayment     *connect.Client[RecordPaymentRequest, RecordPaymentResponse]
	GetGroupBalances  *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
	GetFriendBalances *connect.Client[GetFriendBalancesRequest, GetFriendBalancesResponse]
	GetSettlements    *connect.Client[GetSettlementsRequest, GetSettlementsResponse]
}

// NewBalanceServiceClient creates a client for the BalanceService at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BalanceServiceClient {
	o := rpc.ClientOptions(opts...)
	return &BalanceServiceClient{
		PreviewSplit:      connect.NewClient[PreviewSplitRequest, PreviewSplitResponse](httpClient, baseURL+PreviewSplitProcedure, o...),
		CreateExpense:     connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+CreateExpenseProcedure, o...),
		DeleteExpense:     connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+DeleteExpenseProcedure, o...),
		ListExpenses:      connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ListExpensesProcedure, o...),
		RecordPayment:     connect.NewClient[RecordPaymentRequest, RecordPaymentResponse](httpClient, baseURL+RecordPaymentProcedure, o...),
		GetGroupBalances:  connect.NewClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL+GetGroupBalancesProcedure, o...),
		GetFriendBalances: connect.NewClient[GetFriendBalancesRequest, GetFriendBalancesResponse](httpClient, baseURL+GetFriendBalancesProcedure, o...),
		GetSettlements:    connect.NewClient[GetSettlementsRequest, GetSettlementsResponse](httpClient, baseURL+GetSettlementsProcedure, o...),
	}
}
