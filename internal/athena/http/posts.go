package http

import (
	"net/http"
	"strconv"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/httpx"
)

type PostsHandler struct {
	PostService *service.PostService
}

type createPostRequest struct {
	Content  string   `json:"content"`
	PostType string   `json:"postType"`
	Tags     []string `json:"tags"`
}

func (h *PostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := h.PostService.CreatePost(r.Context(), tag, req.Content, req.PostType, req.Tags)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{"post": res.Post}
	if res.Milestone > 0 {
		payload["milestone"] = res.Milestone
	}
	httpx.WriteData(w, http.StatusCreated, payload)
}

// HandleList serves the feed. Query params: tag, type, limit, skip.
func (h *PostsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	skip, _ := strconv.Atoi(q.Get("skip"))

	page, err := h.PostService.ListPosts(r.Context(), store.PostFilter{
		Tag:      q.Get("tag"),
		PostType: q.Get("type"),
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"posts":   page.Posts,
		"total":   page.Total,
		"hasMore": page.HasMore,
	})
}

// HandleMine serves the signed-in user's own posts, newest first.
func (h *PostsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.PostService.ListPostsByAuthor(r.Context(), tag, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *PostsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"post": post})
}

type editPostRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (h *PostsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req editPostRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	post, err := h.PostService.EditPost(r.Context(), r.PathValue("id"), tag, req.Content, req.Tags)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"post": post})
}

func (h *PostsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	if err := h.PostService.DeletePost(r.Context(), r.PathValue("id"), tag); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"deleted": true})
}

type reactionRequest struct {
	Kind string `json:"kind"`
}

func (h *PostsHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req reactionRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	post, err := h.PostService.React(r.Context(), r.PathValue("id"), tag, req.Kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"post": post})
}

func (h *PostsHandler) HandleUnreact(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req reactionRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	post, err := h.PostService.Unreact(r.Context(), r.PathValue("id"), tag, req.Kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"post": post})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *PostsHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	post, err := h.PostService.AddComment(r.Context(), r.PathValue("id"), tag, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, map[string]any{"post": post})
}

func (h *PostsHandler) HandleLikeComment(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	if err := h.PostService.LikeComment(r.Context(), r.PathValue("commentId"), tag); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"liked": true})
}

func (h *PostsHandler) HandleUnlikeComment(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	if err := h.PostService.UnlikeComment(r.Context(), r.PathValue("commentId"), tag); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"liked": false})
}
