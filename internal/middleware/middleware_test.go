package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/rpc"
)

type whoamiRequest struct{}

type whoamiResponse struct {
	UserID string `json:"user_id"`
}

const whoamiProcedure = "/settleup.test.v1.TestService/WhoAmI"

func newWhoAmIServer(t *testing.T, jwtManager *auth.JWTManager) *connect.Client[whoamiRequest, whoamiResponse] {
	t.Helper()

	handler := connect.NewUnaryHandler(whoamiProcedure,
		func(ctx context.Context, _ *connect.Request[whoamiRequest]) (*connect.Response[whoamiResponse], error) {
			return connect.NewResponse(&whoamiResponse{UserID: GetUserID(ctx)}), nil
		},
		rpc.HandlerOptions(connect.WithInterceptors(LoggingInterceptor(), RequireAuth(jwtManager)))...,
	)
	mux := http.NewServeMux()
	mux.Handle(whoamiProcedure, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return connect.NewClient[whoamiRequest, whoamiResponse](http.DefaultClient, server.URL+whoamiProcedure, rpc.ClientOptions()...)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	client := newWhoAmIServer(t, jwtManager)
	ctx := context.Background()

	t.Run("valid token sets viewer", func(t *testing.T) {
		token, err := jwtManager.Generate("alice", "alice@example.com")
		require.NoError(t, err)

		req := connect.NewRequest(&whoamiRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		resp, err := client.CallUnary(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Msg.UserID)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := client.CallUnary(ctx, connect.NewRequest(&whoamiRequest{}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := connect.NewRequest(&whoamiRequest{})
		req.Header().Set("Authorization", "Basic abc")
		_, err := client.CallUnary(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("bad token", func(t *testing.T) {
		req := connect.NewRequest(&whoamiRequest{})
		req.Header().Set("Authorization", "Bearer nope")
		_, err := client.CallUnary(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetEmail(ctx))
	assert.Equal(t, "bob", GetUserID(WithUserID(ctx, "bob")))
}

// syncBuffer is a bytes.Buffer safe for the server goroutine to write while
// the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		out = append(out, entry)
	}
	return out
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestLoggingInterceptorRecordsUser(t *testing.T) {
	logs := captureLogs(t)
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	client := newWhoAmIServer(t, jwtManager)
	ctx := context.Background()

	token, err := jwtManager.Generate("alice", "alice@example.com")
	require.NoError(t, err)
	req := connect.NewRequest(&whoamiRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	_, err = client.CallUnary(ctx, req)
	require.NoError(t, err)

	_, err = client.CallUnary(ctx, connect.NewRequest(&whoamiRequest{}))
	require.Error(t, err)

	entries := logs.entries(t)
	require.Len(t, entries, 2)

	assert.Equal(t, "RPC ok", entries[0]["msg"])
	assert.Equal(t, whoamiProcedure, entries[0]["procedure"])
	assert.Equal(t, "alice", entries[0]["user_id"])

	assert.Equal(t, "RPC error", entries[1]["msg"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "", entries[1]["user_id"])
}
