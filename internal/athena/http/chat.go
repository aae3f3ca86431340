package http

import (
	"net/http"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type ChatHandler struct {
	ChatService *service.ChatService
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	reply, err := h.ChatService.Send(r.Context(), tag, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"reply": reply})
}

func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())
	httpx.WriteData(w, http.StatusOK, map[string]any{
		"messages": h.ChatService.History(tag),
	})
}

func (h *ChatHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())
	h.ChatService.Clear(tag)
	httpx.WriteData(w, http.StatusOK, map[string]any{"cleared": true})
}
