package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-dev/blog-service/internal/http/middleware"
	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types/users"
)

func authedRequest(t *testing.T, req *http.Request, user *users.User) *http.Request {
	t.Helper()
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestMe_LivePostCount(t *testing.T) {
	user := &users.User{
		ID:       "user-1",
		Email:    "a@b.com",
		Username: "ann",
		Stats:    users.Stats{Posts: 3, Likes: 7},
	}

	store := &fakeStorage{
		countPostsByAuthor: func(ctx context.Context, authorID string) (int, error) {
			assert.Equal(t, "user-1", authorID)
			return 5, nil
		},
	}

	req := authedRequest(t, httptest.NewRequest(http.MethodGet, "/auth/me", nil), user)
	rr := httptest.NewRecorder()

	Me(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// The posts figure comes from counting post records, not the counter.
	stats := resp["stats"].(map[string]interface{})
	assert.Equal(t, float64(5), stats["posts"])
	assert.Equal(t, float64(7), stats["likes"])

	// The password digest never leaves the service.
	_, leaked := resp["password"]
	assert.False(t, leaked)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	user := &users.User{ID: "user-1"}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/update", map[string]string{}), user)
	rr := httptest.NewRecorder()

	UpdateProfile(&fakeStorage{})(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	user := &users.User{ID: "user-1", Email: "a@b.com", Username: "ann"}

	store := &fakeStorage{
		updateUserProfile: func(ctx context.Context, id, username, email string) (*users.User, error) {
			assert.Equal(t, "user-1", id)
			assert.Equal(t, "annie", username)
			assert.Equal(t, "", email)
			return &users.User{ID: id, Email: "a@b.com", Username: username}, nil
		},
	}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/update", map[string]string{"username": "annie"}), user)
	rr := httptest.NewRecorder()

	UpdateProfile(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "annie", resp["username"])
}

func TestUpdatePreferences_EmptyBodyResets(t *testing.T) {
	user := &users.User{ID: "user-1", Preferences: users.Preferences{DarkMode: true}}

	var stored users.Preferences
	store := &fakeStorage{
		updateUserPreferences: func(ctx context.Context, id string, prefs users.Preferences) (*users.User, error) {
			stored = prefs
			updated := *user
			updated.Preferences = prefs
			return &updated, nil
		},
	}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/preferences", map[string]interface{}{}), user)
	rr := httptest.NewRecorder()

	UpdatePreferences(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// Whole-record replacement: {} wipes previously set options.
	assert.False(t, stored.DarkMode)
}

func TestUpdatePreferences_SetDarkMode(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		updateUserPreferences: func(ctx context.Context, id string, prefs users.Preferences) (*users.User, error) {
			assert.True(t, prefs.DarkMode)
			updated := *user
			updated.Preferences = prefs
			return &updated, nil
		},
	}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/preferences", map[string]bool{"darkMode": true}), user)
	rr := httptest.NewRecorder()

	UpdatePreferences(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSelectAvatar_NotOwned(t *testing.T) {
	user := &users.User{ID: "user-1", Avatar: "/uploads/current.png"}

	store := &fakeStorage{
		selectUserAvatar: func(ctx context.Context, id, avatarPath string) (*users.User, error) {
			return nil, storage.ErrAvatarNotOwned
		},
	}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/avatar/select", map[string]string{"avatar": "/uploads/other.png"}), user)
	rr := httptest.NewRecorder()

	SelectAvatar(store)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not in your uploads")
}

func TestSelectAvatar_MissingPath(t *testing.T) {
	user := &users.User{ID: "user-1"}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/avatar/select", map[string]string{}), user)
	rr := httptest.NewRecorder()

	SelectAvatar(&fakeStorage{})(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSelectAvatar_Success(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		selectUserAvatar: func(ctx context.Context, id, avatarPath string) (*users.User, error) {
			assert.Equal(t, "/uploads/old.png", avatarPath)
			return &users.User{ID: id, Avatar: avatarPath}, nil
		},
	}

	req := authedRequest(t, jsonRequest(t, http.MethodPut, "/auth/avatar/select", map[string]string{"avatar": "/uploads/old.png"}), user)
	rr := httptest.NewRecorder()

	SelectAvatar(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "/uploads/old.png", resp["avatar"])
}

func TestIncrementPostStat(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		incrementPostCount: func(ctx context.Context, id string) (users.Stats, error) {
			return users.Stats{Posts: 4, Likes: 2}, nil
		},
	}

	req := authedRequest(t, httptest.NewRequest(http.MethodPost, "/auth/stats/post", nil), user)
	rr := httptest.NewRecorder()

	IncrementPostStat(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stats users.Stats
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Posts)
	assert.Equal(t, 2, stats.Likes)
}

func TestGetStats(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		getUserStats: func(ctx context.Context, id string) (users.Stats, error) {
			return users.Stats{Posts: 9, Likes: 1}, nil
		},
	}

	req := authedRequest(t, httptest.NewRequest(http.MethodGet, "/auth/stats", nil), user)
	rr := httptest.NewRecorder()

	GetStats(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stats users.Stats
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 9, stats.Posts)
}

func TestDeleteAccount(t *testing.T) {
	user := &users.User{ID: "user-1"}

	var deleted string
	store := &fakeStorage{
		deleteUser: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	req := authedRequest(t, httptest.NewRequest(http.MethodDelete, "/auth/delete", nil), user)
	rr := httptest.NewRecorder()

	DeleteAccount(store)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", deleted)
}

func TestProtectedHandlers_NoUserInContext(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"me":          Me(&fakeStorage{}),
		"update":      UpdateProfile(&fakeStorage{}),
		"preferences": UpdatePreferences(&fakeStorage{}),
		"delete":      DeleteAccount(&fakeStorage{}),
		"stats":       GetStats(&fakeStorage{}),
	}

	for name, handler := range handlers {
		req := httptest.NewRequest(http.MethodGet, "/auth/"+name, nil)
		rr := httptest.NewRecorder()

		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "handler %s", name)
	}
}
