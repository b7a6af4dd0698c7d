package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-dev/blog-service/internal/http/middleware"
	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types/users"
	"github.com/inkwell-dev/blog-service/internal/utils/response"
)

// Me returns the caller's profile with a live post count
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Success 200 {object} users.User "Profile without the password digest"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/me [get]
func Me(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		// stats.posts here is recomputed from the content store; the
		// incrementable counter behind /auth/stats is a separate figure.
		count, err := store.CountPostsByAuthor(r.Context(), user.ID)
		if err != nil {
			slog.Error("Failed to count posts", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}

		profile := *user
		profile.Stats.Posts = count

		response.WriteJSON(w, http.StatusOK, profile)
	}
}

// UpdateProfile patches username and/or email
// @Summary Update profile fields
// @Tags auth
// @Accept json
// @Produce json
// @Param patch body users.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} users.User "Updated profile"
// @Failure 400 {object} response.Response "Nothing to update"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/update [put]
func UpdateProfile(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var req users.UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = normalizeEmail(req.Email)

		if req.Username == "" && req.Email == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("nothing to update")))
			return
		}

		updated, err := store.UpdateUserProfile(r.Context(), user.ID, req.Username, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				response.WriteJSON(w, http.StatusConflict, response.GeneralError(storage.ErrDuplicateEmail))
				return
			}
			slog.Error("Failed to update profile", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update profile")))
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// UpdatePreferences replaces the preferences record wholesale
// @Summary Replace user preferences
// @Description The body replaces the whole record; an empty body resets every option.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} users.User "Updated profile"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/preferences [put]
func UpdatePreferences(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		// Decoding into a zero value is what makes {} a full reset.
		var prefs users.Preferences
		err := json.NewDecoder(r.Body).Decode(&prefs)
		if err != nil && !errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		updated, err := store.UpdateUserPreferences(r.Context(), user.ID, prefs)
		if err != nil {
			slog.Error("Failed to update preferences", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update preferences")))
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteAccount removes the user record
// @Summary Delete the current account
// @Description Authored posts, uploaded files, and already issued tokens are left untouched.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Confirmation"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/delete [delete]
func DeleteAccount(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		if err := store.DeleteUser(r.Context(), user.ID); err != nil {
			slog.Error("Failed to delete account", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to delete account")))
			return
		}
		slog.Info("Account deleted", slog.String("user_id", user.ID))

		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted successfully"})
	}
}

// IncrementPostStat bumps the persisted post counter
// @Summary Increment the posts counter
// @Tags auth
// @Produce json
// @Success 200 {object} users.Stats "Updated counters"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/stats/post [post]
func IncrementPostStat(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		stats, err := store.IncrementPostCount(r.Context(), user.ID)
		if err != nil {
			slog.Error("Failed to increment post count", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update posts")))
			return
		}

		response.WriteJSON(w, http.StatusOK, stats)
	}
}

// GetStats returns the persisted counters
// @Summary Get the posts/likes counters
// @Tags auth
// @Produce json
// @Success 200 {object} users.Stats "Counters"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/stats [get]
func GetStats(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		stats, err := store.GetUserStats(r.Context(), user.ID)
		if err != nil {
			slog.Error("Failed to fetch stats", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to fetch stats")))
			return
		}

		response.WriteJSON(w, http.StatusOK, stats)
	}
}
