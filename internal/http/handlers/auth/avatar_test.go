package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-dev/blog-service/internal/config"
	"github.com/inkwell-dev/blog-service/internal/services/media"
	"github.com/inkwell-dev/blog-service/internal/types/users"
)

const testMaxUpload = 32 * 1024 * 1024

func newTestMediaService(t *testing.T) *media.Service {
	t.Helper()

	store, err := media.NewDiskStore(t.TempDir())
	assert.NoError(t, err)

	return media.NewServiceWithStore(store, &config.Media{
		MaxAvatarSize:    3 * 1024 * 1024,
		MaxUploadSize:    testMaxUpload,
		AllowedMimeTypes: []string{"image/png", "image/jpeg", "image/jpg", "image/gif", "image/webp"},
	})
}

func multipartUpload(t *testing.T, target, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAvatar_Success(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		addUserAvatar: func(ctx context.Context, id, avatarPath string) (*users.User, error) {
			assert.Equal(t, "user-1", id)
			assert.True(t, strings.HasPrefix(avatarPath, "/uploads/avatar_user-1_"))
			return &users.User{ID: id, Avatar: avatarPath, Avatars: []string{avatarPath}}, nil
		},
	}

	req := multipartUpload(t, "/auth/avatar", "avatar", "me.png", "image/png", []byte("png-bytes"))
	req = authedRequest(t, req, user)
	rr := httptest.NewRecorder()

	UploadAvatar(store, newTestMediaService(t), testMaxUpload)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["avatar"])
	assert.Len(t, resp["avatars"], 1)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	user := &users.User{ID: "user-1"}

	store := &fakeStorage{
		addUserAvatar: func(ctx context.Context, id, avatarPath string) (*users.User, error) {
			t.Fatal("AddUserAvatar must not be called for a rejected upload")
			return nil, nil
		},
	}

	req := multipartUpload(t, "/auth/avatar", "avatar", "notes.txt", "text/plain", []byte("hello"))
	req = authedRequest(t, req, user)
	rr := httptest.NewRecorder()

	UploadAvatar(store, newTestMediaService(t), testMaxUpload)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadAvatar_MissingFile(t *testing.T) {
	user := &users.User{ID: "user-1"}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req = authedRequest(t, req, user)
	rr := httptest.NewRecorder()

	UploadAvatar(&fakeStorage{}, newTestMediaService(t), testMaxUpload)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
