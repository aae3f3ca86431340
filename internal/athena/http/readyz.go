package http

import (
	"net/http"
	"time"

	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/httpx"
)

// ReadyzHandler is the readiness probe: checks the database connection too.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		database := "ok"

		if err := st.Ping(r.Context()); err != nil {
			database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, map[string]any{
			"status":  status,
			"uptime":  time.Since(startTime).String(),
			"version": version,
			"checks":  map[string]string{"database": database},
		})
	}
}
