package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

type testServer struct {
	url string
	jwt *auth.JWTManager
}

type clients struct {
	groups   *GroupServiceClient
	balances *BalanceServiceClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	NewGroupService(store).Register(mux, interceptors)
	NewBalanceService(store, nil).Register(mux, interceptors)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{url: server.URL, jwt: jwtManager}
}

// as returns clients that authenticate as userID.
func (s *testServer) as(t *testing.T, userID string) clients {
	t.Helper()

	token, err := s.jwt.Generate(userID, userID+"@example.com")
	require.NoError(t, err)

	opt := connect.WithInterceptors(bearer(token))
	return clients{
		groups:   NewGroupServiceClient(http.DefaultClient, s.url, opt),
		balances: NewBalanceServiceClient(http.DefaultClient, s.url, opt),
	}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// createGroup creates a group owned by the first user with the others as members.
func createGroup(t *testing.T, c clients, name string, members ...Member) Group {
	t.Helper()

	resp, err := c.groups.CreateGroup.CallUnary(context.Background(), connect.NewRequest(&CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func amt(s string) money.Amount {
	return money.MustParse(s)
}
