package http

import (
	"net/http"
	"strconv"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type JournalHandler struct {
	JournalService *service.JournalService
}

type createEntryRequest struct {
	Content string `json:"content"`
	Prompt  string `json:"prompt"`
	Mood    int    `json:"mood"`
}

func (h *JournalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := h.JournalService.CreateEntry(r.Context(), tag, req.Content, req.Prompt, req.Mood)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{"entry": res.Entry}
	if res.Milestone > 0 {
		payload["milestone"] = res.Milestone
	}
	httpx.WriteData(w, http.StatusCreated, payload)
}

func (h *JournalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	skip, _ := strconv.Atoi(q.Get("skip"))

	page, err := h.JournalService.ListEntries(r.Context(), tag, limit, skip)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"entries":         page.Entries,
		"total":           page.Total,
		"hasMore":         page.HasMore,
		"hasEntryToday":   page.HasEntryToday,
		"suggestedPrompt": page.SuggestedPrompt,
	})
}

func (h *JournalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	entry, err := h.JournalService.GetEntry(r.Context(), r.PathValue("id"), tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"entry": entry})
}

func (h *JournalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	if err := h.JournalService.DeleteEntry(r.Context(), r.PathValue("id"), tag); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"deleted": true})
}
