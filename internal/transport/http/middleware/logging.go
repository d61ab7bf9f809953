package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const errorSlotKey contextKey = "error-slot"

type errorSlot struct{ err error }

// SetError attaches err to the request so RequestLogger can report it.
// It is a no-op outside RequestLogger.
func SetError(ctx context.Context, err error) {
	if slot, ok := ctx.Value(errorSlotKey).(*errorSlot); ok {
		slot.err = err
	}
}

// RequestLogger logs one line per request with method, path, status, duration
// and request id. 5xx responses are logged at error level.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			slot := &errorSlot{}
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), errorSlotKey, slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("remote_ip", peerIP(r)),
			}
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				fields = append(fields, zap.String("forwarded_for", xff))
			}
			if slot.err != nil {
				fields = append(fields, zap.Error(slot.err))
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("request failed", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request rejected", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}
