package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserTag holds the authenticated user's full tag (username#NNNN).
	CtxKeyUserTag ctxKey = "user_tag"
	// CtxKeyUserRole holds the authenticated user's role.
	CtxKeyUserRole ctxKey = "user_role"
)

// UserTagFromCtx returns the authenticated user's full tag, if present.
func UserTagFromCtx(ctx context.Context) (string, bool) {
	tag, ok := ctx.Value(CtxKeyUserTag).(string)
	return tag, ok && tag != ""
}

// UserRoleFromCtx returns the authenticated user's role, if present.
func UserRoleFromCtx(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(CtxKeyUserRole).(string)
	return role, ok && role != ""
}
