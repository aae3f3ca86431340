package http

import (
	"net/http"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/pkg/httpx"
)

type BlogsHandler struct {
	BlogService *service.BlogService
	AuthService *service.AuthService
}

// HandleList serves published articles to everyone.
func (h *BlogsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.BlogService.ListPublished(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"blogs": blogs})
}

// HandleGet serves one article by slug and counts the view.
func (h *BlogsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.BlogService.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"blog": blog})
}

// HandleListAll serves every article, drafts included. Admin only.
func (h *BlogsHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.BlogService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"blogs": blogs})
}

type blogRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	CoverImage  string   `json:"coverImage"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"isPublished"`
}

func (h *BlogsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	var req blogRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	author, err := h.AuthService.Me(r.Context(), tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	blog, err := h.BlogService.Create(r.Context(), author.FullTag, author.Username, service.BlogInput{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		CoverImage:  req.CoverImage,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, map[string]any{"blog": blog})
}

func (h *BlogsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	blog, err := h.BlogService.Update(r.Context(), r.PathValue("id"), service.BlogInput{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		CoverImage:  req.CoverImage,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"blog": blog})
}

func (h *BlogsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.BlogService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"deleted": true})
}
