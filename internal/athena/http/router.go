package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/session"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/httpx"
	"github.com/athena-forum/athena/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions *session.Manager

	AuthService    *service.AuthService
	StreakService  *service.StreakService
	PostService    *service.PostService
	JournalService *service.JournalService
	MoodService    *service.MoodService
	BlogService    *service.BlogService
	ChatService    *service.ChatService
	ProfileService *service.ProfileService
}

func NewRouter(buildVersion string, st store.Store, sessions *session.Manager, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		sessions:     sessions,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerStreak()
	r.registerPosts()
	r.registerJournal()
	r.registerMood()
	r.registerProfile()
	r.registerBlogs()
	r.registerChat()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Sessions: r.sessions}

	// Ceremony starts - moderate by IP.
	r.Mux.Handle("POST /v1/auth/register/options",
		httpx.Chain(http.HandlerFunc(h.HandleRegisterOptions),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login/options",
		httpx.Chain(http.HandlerFunc(h.HandleLoginOptions),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Ceremony completions are the credential-guessing surface - strict by IP.
	r.Mux.Handle("POST /v1/auth/register/verify",
		httpx.Chain(http.HandlerFunc(h.HandleRegisterVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login/verify",
		httpx.Chain(http.HandlerFunc(h.HandleLoginVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			SessionAuth(r.sessions),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerStreak() {
	h := &StreakHandler{StreakService: r.StreakService}

	r.Mux.Handle("GET /v1/streak",
		httpx.Chain(http.HandlerFunc(h.HandleView),
			SessionAuth(r.sessions),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/streak",
		httpx.Chain(http.HandlerFunc(h.HandleAdvance),
			SessionAuth(r.sessions),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPosts() {
	h := &PostsHandler{PostService: r.PostService}
	authed := SessionAuth(r.sessions)

	r.Mux.Handle("GET /v1/posts",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/posts/mine",
		httpx.Chain(http.HandlerFunc(h.HandleMine),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/posts",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("PUT /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleEdit),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))

	r.Mux.Handle("POST /v1/posts/{id}/reactions",
		httpx.Chain(http.HandlerFunc(h.HandleReact),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/posts/{id}/reactions",
		httpx.Chain(http.HandlerFunc(h.HandleUnreact),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))

	r.Mux.Handle("POST /v1/posts/{id}/comments",
		httpx.Chain(http.HandlerFunc(h.HandleComment),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/comments/{commentId}/likes",
		httpx.Chain(http.HandlerFunc(h.HandleLikeComment),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/comments/{commentId}/likes",
		httpx.Chain(http.HandlerFunc(h.HandleUnlikeComment),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerJournal() {
	h := &JournalHandler{JournalService: r.JournalService}
	authed := SessionAuth(r.sessions)

	r.Mux.Handle("GET /v1/journal",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/journal",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/journal/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("DELETE /v1/journal/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerMood() {
	h := &MoodHandler{MoodService: r.MoodService}
	authed := SessionAuth(r.sessions)

	r.Mux.Handle("GET /v1/mood",
		httpx.Chain(http.HandlerFunc(h.HandleHistory),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/mood",
		httpx.Chain(http.HandlerFunc(h.HandleCheckIn),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			SessionAuth(r.sessions),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBlogs() {
	h := &BlogsHandler{BlogService: r.BlogService, AuthService: r.AuthService}
	authed := SessionAuth(r.sessions)

	// Public reads.
	r.Mux.Handle("GET /v1/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/blogs/{slug}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit)))

	// Admin surface.
	r.Mux.Handle("GET /v1/admin/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleListAll),
			authed, RequireAdmin(), httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/admin/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authed, RequireAdmin(), httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("PUT /v1/admin/blogs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authed, RequireAdmin(), httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/admin/blogs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authed, RequireAdmin(), httpx.RateLimitByUser(httpx.ModerateLimit)))
}

func (r *Router) registerChat() {
	h := &ChatHandler{ChatService: r.ChatService}
	authed := SessionAuth(r.sessions)

	r.Mux.Handle("POST /v1/chat",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			authed, httpx.RateLimitByUser(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/chat",
		httpx.Chain(http.HandlerFunc(h.HandleHistory),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
	r.Mux.Handle("DELETE /v1/chat",
		httpx.Chain(http.HandlerFunc(h.HandleClear),
			authed, httpx.RateLimitByUser(httpx.LenientLimit)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
