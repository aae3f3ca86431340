package http

import (
	"net/http"
	"strconv"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type MoodHandler struct {
	MoodService *service.MoodService
}

type checkInRequest struct {
	Mood int    `json:"mood"`
	Note string `json:"note"`
}

func (h *MoodHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := h.MoodService.CheckIn(r.Context(), tag, req.Mood, req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{
		"entry":   res.Entry,
		"updated": res.Updated,
	}
	if res.Milestone > 0 {
		payload["milestone"] = res.Milestone
	}
	httpx.WriteData(w, http.StatusOK, payload)
}

// HandleHistory serves the trailing mood window. Query param: days.
func (h *MoodHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	history, err := h.MoodService.History(r.Context(), tag, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{
		"entries":        history.Entries,
		"checkedInToday": history.CheckedInToday,
		"today":          history.Today,
	}
	if history.Today != nil {
		payload["todayLabel"] = domain.MoodLabels[history.Today.Mood]
	}
	httpx.WriteData(w, http.StatusOK, payload)
}
