package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/httpx"
	"github.com/athena-forum/athena/pkg/slogx"
)

// writeServiceError maps service errors onto the response taxonomy:
// validation 400, auth 401, ownership 403, not-found 404, conflict 409,
// everything else a generic 500 with the detail only in the server log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		httpx.WriteError(w, http.StatusBadRequest, "Username must be 2-20 characters of lowercase letters, numbers, or underscores.")
	case errors.Is(err, service.ErrChallengeExpired):
		httpx.WriteError(w, http.StatusBadRequest, "Your session challenge expired. Please start again.")
	case errors.Is(err, service.ErrContentRequired):
		httpx.WriteError(w, http.StatusBadRequest, "Content is required.")
	case errors.Is(err, service.ErrContentTooLong):
		httpx.WriteError(w, http.StatusBadRequest, "Content is too long.")
	case errors.Is(err, service.ErrInvalidPostType):
		httpx.WriteError(w, http.StatusBadRequest, "Post type must be vent or flex.")
	case errors.Is(err, service.ErrInvalidTag):
		httpx.WriteError(w, http.StatusBadRequest, "Unknown tag.")
	case errors.Is(err, service.ErrInvalidMood):
		httpx.WriteError(w, http.StatusBadRequest, "Mood must be between 1 and 5.")
	case errors.Is(err, service.ErrInvalidReaction):
		httpx.WriteError(w, http.StatusBadRequest, "Unknown reaction.")
	case errors.Is(err, service.ErrTitleRequired):
		httpx.WriteError(w, http.StatusBadRequest, "Title is required.")

	case errors.Is(err, service.ErrVerificationFailed):
		httpx.WriteError(w, http.StatusUnauthorized, "Verification failed. Please try again.")

	case errors.Is(err, service.ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, "You can only modify your own content.")

	case errors.Is(err, service.ErrUnknownCredential):
		httpx.WriteError(w, http.StatusNotFound, "This passkey is not recognized. You may need to register first.")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Not found.")

	case errors.Is(err, service.ErrTagTaken), errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "That name was just taken. Please try again.")
	case errors.Is(err, service.ErrNoFreeDiscriminator):
		httpx.WriteError(w, http.StatusConflict, "That username is very popular right now. Please try another.")

	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
