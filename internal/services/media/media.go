package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-dev/blog-service/internal/config"
)

// Validation failures the handlers translate to 400s; anything else from an
// upload is a storage failure.
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("only images are allowed")
)

// ObjectStore persists an uploaded object under a name relative to the
// serving root.
type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
}

// Service runs the two upload pipelines. Avatars are type- and
// size-restricted; post images are stored as-is.
type Service struct {
	store ObjectStore
	cfg   *config.Media
}

// NewService selects the object store backend from config.
func NewService(cfg *config.Config) (*Service, error) {
	var store ObjectStore
	var err error

	switch cfg.Media.Backend {
	case "minio":
		store, err = NewMinioStore(&cfg.MinIO)
	case "disk", "":
		store, err = NewDiskStore(cfg.Media.UploadDir)
	default:
		err = fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}
	if err != nil {
		return nil, err
	}

	return &Service{store: store, cfg: &cfg.Media}, nil
}

func NewServiceWithStore(store ObjectStore, cfg *config.Media) *Service {
	return &Service{store: store, cfg: cfg}
}

func (s *Service) allowedType(contentType string) bool {
	for _, allowed := range s.cfg.AllowedMimeTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// SaveAvatar validates and stores an avatar upload. The generated name embeds
// the owner id and a timestamp; the original extension is preserved.
func (s *Service) SaveAvatar(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if header == nil || header.Size == 0 {
		return "", ErrNoFile
	}
	if header.Size > s.cfg.MaxAvatarSize {
		return "", ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if !s.allowedType(contentType) {
		return "", ErrUnsupportedType
	}

	ext := filepath.Ext(header.Filename)
	name := fmt.Sprintf("avatar_%s_%d%s", userID, time.Now().UnixMilli(), ext)

	if err := s.store.Put(ctx, name, file, header.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return "/uploads/" + name, nil
}

// SavePostImage stores a post image upload. The original filename stays in
// the generated name for traceability; the timestamp and random suffix keep
// concurrent uploads from colliding.
func (s *Service) SavePostImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if header == nil || header.Size == 0 {
		return "", ErrNoFile
	}

	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.New().String(), filepath.Base(header.Filename))

	contentType := header.Header.Get("Content-Type")
	if err := s.store.Put(ctx, name, file, header.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return "/uploads/" + name, nil
}
