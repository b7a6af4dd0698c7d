package blogs

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-dev/blog-service/internal/http/middleware"
	"github.com/inkwell-dev/blog-service/internal/services/media"
	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types"
	"github.com/inkwell-dev/blog-service/internal/utils/response"
)

// FeedProvider serves the post listing; either raw storage or the Redis
// cache wrapper.
type FeedProvider interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
}

// FeedInvalidator drops the cached listing after a write. A nil invalidator
// means no cache is configured.
type FeedInvalidator interface {
	InvalidateFeed(ctx context.Context)
}

// splitList turns a comma-separated form field into trimmed values; empty
// input yields an empty slice, not [""].
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Create handles new blog posts
// @Summary Create a blog post
// @Tags blogs
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param content formData string true "Body"
// @Param image formData file false "Cover image"
// @Success 201 {object} types.Post "Created post with expanded author"
// @Failure 400 {object} response.Response "Missing title or content"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /blogs [post]
func Create(store storage.Storage, mediaSvc *media.Service, feedCache FeedInvalidator, publicURL string, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		req := types.CreatePostRequest{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Content:     r.FormValue("content"),
			ReadingTime: r.FormValue("readingTime"),
			Tags:        splitList(r.FormValue("tags")),
			Links:       splitList(r.FormValue("links")),
		}

		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("title and content are required")))
			return
		}

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()

			path, err := mediaSvc.SavePostImage(r.Context(), file, header)
			if err != nil {
				slog.Error("Failed to store post image", slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
				return
			}
			req.Image = publicURL + path
		}

		post, err := store.CreatePost(r.Context(), user.ID, req)
		if err != nil {
			slog.Error("Failed to create post", slog.String("error", err.Error()), slog.String("user_id", user.ID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}
		slog.Info("Post created", slog.String("post_id", post.ID), slog.String("user_id", user.ID))

		if feedCache != nil {
			feedCache.InvalidateFeed(r.Context())
		}

		response.WriteJSON(w, http.StatusCreated, post)
	}
}

// List returns every post, newest first
// @Summary List blog posts
// @Tags blogs
// @Produce json
// @Success 200 {array} types.Post "Posts with expanded authors"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /blogs [get]
func List(feed FeedProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := feed.ListPosts(r.Context())
		if err != nil {
			slog.Error("Failed to list posts", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}

		response.WriteJSON(w, http.StatusOK, posts)
	}
}

// Get returns one post by id
// @Summary Get a blog post
// @Tags blogs
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} types.Post "Post with expanded author"
// @Failure 404 {object} response.Response "Post not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /blogs/{id} [get]
func Get(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		post, err := store.GetPostByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("blog not found")))
				return
			}
			slog.Error("Failed to fetch post", slog.String("error", err.Error()), slog.String("post_id", id))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}

		response.WriteJSON(w, http.StatusOK, post)
	}
}
