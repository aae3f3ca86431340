package http

import (
	"net/http"
	"time"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type StreakHandler struct {
	StreakService *service.StreakService
}

// HandleView returns the display state of the user's streak.
func (h *StreakHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	view, err := h.StreakService.View(r.Context(), tag, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"streak": view})
}

// HandleAdvance records a qualifying activity directly.
func (h *StreakHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	res, err := h.StreakService.Advance(r.Context(), tag, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{
		"streak":  service.ViewStreak(res.Streak, time.Now()),
		"changed": res.Changed,
	}
	if res.Milestone > 0 {
		payload["milestone"] = res.Milestone
	}
	httpx.WriteData(w, http.StatusOK, payload)
}
