package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwell-dev/blog-service/internal/http/middleware"
	"github.com/inkwell-dev/blog-service/internal/services/media"
	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types/users"
	"github.com/inkwell-dev/blog-service/internal/utils/response"
)

// UploadAvatar stores a new avatar and makes it active
// @Summary Upload an avatar image
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image (png/jpeg/gif/webp, max 3 MiB)"
// @Success 200 {object} map[string]interface{} "Active avatar and upload history"
// @Failure 400 {object} response.Response "Missing, oversized, or non-image file"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/avatar [post]
func UploadAvatar(store storage.Storage, mediaSvc *media.Service, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		file, header, err := r.FormFile("avatar")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(media.ErrNoFile))
			return
		}
		defer file.Close()

		path, err := mediaSvc.SaveAvatar(r.Context(), user.ID, file, header)
		if err != nil {
			if errors.Is(err, media.ErrNoFile) || errors.Is(err, media.ErrFileTooLarge) || errors.Is(err, media.ErrUnsupportedType) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			slog.Error("Failed to store avatar", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to upload avatar")))
			return
		}

		// If this write fails the stored file stays unreferenced on disk;
		// nothing ever points at it.
		updated, err := store.AddUserAvatar(r.Context(), user.ID, path)
		if err != nil {
			slog.Error("Failed to record avatar", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to upload avatar")))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "avatar uploaded successfully",
			"avatar":  updated.Avatar,
			"avatars": updated.Avatars,
		})
	}
}

// SelectAvatar activates a previously uploaded avatar
// @Summary Select an avatar from the upload history
// @Tags auth
// @Accept json
// @Produce json
// @Param avatar body users.SelectAvatarRequest true "Relative avatar path"
// @Success 200 {object} map[string]string "Active avatar"
// @Failure 400 {object} response.Response "Avatar missing or not in uploads"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /auth/avatar/select [put]
func SelectAvatar(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var req users.SelectAvatarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Avatar == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("avatar not provided")))
			return
		}

		updated, err := store.SelectUserAvatar(r.Context(), user.ID, req.Avatar)
		if err != nil {
			if errors.Is(err, storage.ErrAvatarNotOwned) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(storage.ErrAvatarNotOwned))
				return
			}
			slog.Error("Failed to select avatar", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to select avatar")))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "avatar updated successfully",
			"avatar":  updated.Avatar,
		})
	}
}
