// Package server exposes a read-only diagnostics endpoint with the current
// session state, the daemon-world stand-in for the device's serial console
// output.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/niktheblak/web-common/pkg/auth"

	"github.com/niktheblak/lightlogger/internal/session"
	"github.com/niktheblak/lightlogger/pkg/middleware"
)

// Broker exposes connection state for the status response.
type Broker interface {
	IsConnected() bool
}

type statusResponse struct {
	session.Snapshot
	BrokerConnected bool `json:"broker_connected"`
}

// New builds the diagnostics handler: GET /status behind bearer auth.
func New(sess *session.Session, broker Broker, authenticator auth.Authenticator, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /status", middleware.Authenticator(statusHandler(sess, broker, logger), authenticator))
	return mux
}

func statusHandler(sess *session.Session, broker Broker, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Snapshot:        sess.Snapshot(),
			BrokerConnected: broker.IsConnected(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store, max-age=0")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.LogAttrs(r.Context(), slog.LevelError, "Error while writing output", slog.Any("error", err))
		}
	})
}
