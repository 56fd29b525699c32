package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/logging"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Client-side failures (bad input, missing auth, not found) are logged at WARN;
// internal failures and non-Connect errors at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			ctx, slot := withUserSlot(ctx)
			resp, err := next(ctx, req)

			userID := *slot // empty if auth rejected the call
			if userID == "" {
				userID = GetUserID(ctx)
			}
			duration := time.Since(start).Milliseconds()

			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.Info("RPC ok",
					logging.KeyProcedure, procedure,
					logging.KeyUserID, userID,
					logging.KeyDuration, duration,
				)
			case errors.As(err, &connectErr) && !serverFault(connectErr.Code()):
				slog.Warn("RPC error",
					logging.KeyProcedure, procedure,
					"code", connectErr.Code(),
					logging.KeyError, connectErr.Message(),
					logging.KeyUserID, userID,
					logging.KeyDuration, duration,
				)
			default:
				slog.Error("RPC error",
					logging.KeyProcedure, procedure,
					logging.KeyError, err,
					logging.KeyUserID, userID,
					logging.KeyDuration, duration,
				)
			}

			return resp, err
		}
	}
}

// userSlotKey holds a *string that auth fills in once the caller is known.
// Interceptors further out only see their own ctx, so they read it from here.
type userSlotKey struct{}

func withUserSlot(ctx context.Context) (context.Context, *string) {
	slot := new(string)
	return context.WithValue(ctx, userSlotKey{}, slot), slot
}

func reportUserID(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(userSlotKey{}).(*string); ok {
		*slot = userID
	}
}

func serverFault(code connect.Code) bool {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}
