package http

import (
	"net/http"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet serves the aggregate profile page payload.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	profile, err := h.ProfileService.Get(r.Context(), tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"user":           profile.User,
		"posts":          profile.Posts,
		"moodEntries":    profile.MoodEntries,
		"journalEntries": profile.JournalEntries,
		"stats":          profile.Stats,
	})
}
