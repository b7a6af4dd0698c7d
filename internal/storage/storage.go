package storage

import (
	"context"
	"errors"

	"github.com/inkwell-dev/blog-service/internal/types"
	"github.com/inkwell-dev/blog-service/internal/types/users"
)

// Sentinel errors handlers translate to client-facing statuses. Unknown
// users/posts surface as sql.ErrNoRows from the implementation.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAvatarNotOwned = errors.New("avatar not in your uploads")
)

type Storage interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (*users.User, error)
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	UpdateUserProfile(ctx context.Context, id, username, email string) (*users.User, error)
	UpdateUserPreferences(ctx context.Context, id string, prefs users.Preferences) (*users.User, error)
	AddUserAvatar(ctx context.Context, id, avatarPath string) (*users.User, error)
	SelectUserAvatar(ctx context.Context, id, avatarPath string) (*users.User, error)
	DeleteUser(ctx context.Context, id string) error
	IncrementPostCount(ctx context.Context, id string) (users.Stats, error)
	GetUserStats(ctx context.Context, id string) (users.Stats, error)
	CountPostsByAuthor(ctx context.Context, authorID string) (int, error)

	CreatePost(ctx context.Context, authorID string, req types.CreatePostRequest) (*types.Post, error)
	ListPosts(ctx context.Context) ([]types.Post, error)
	GetPostByID(ctx context.Context, id string) (*types.Post, error)
}
