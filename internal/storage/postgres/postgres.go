package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/inkwell-dev/blog-service/internal/config"
	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types"
	"github.com/inkwell-dev/blog-service/internal/types/users"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			avatars TEXT[] NOT NULL DEFAULT '{}',
			preferences JSONB NOT NULL DEFAULT '{"darkMode": false}',
			stats_posts INTEGER NOT NULL DEFAULT 0,
			stats_likes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		`,
		// author carries no FK on purpose: deleting an account leaves its
		// posts behind with a dangling reference.
		`
		CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			author UUID NOT NULL,
			reading_time TEXT NOT NULL DEFAULT 'Quick',
			image TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			links TEXT[] NOT NULL DEFAULT '{}',
			likes TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

const userColumns = `id, user_id, email, username, password, avatar, avatars, preferences, stats_posts, stats_likes, created_at, updated_at`

func scanUser(row *sql.Row) (*users.User, error) {
	var u users.User
	var prefs []byte

	err := row.Scan(&u.ID, &u.UserID, &u.Email, &u.Username, &u.Password, &u.Avatar,
		pq.Array(&u.Avatars), &prefs, &u.Stats.Posts, &u.Stats.Likes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
	}

	if u.Avatars == nil {
		u.Avatars = []string{}
	}

	return &u, nil
}

// isUniqueViolation reports whether err is the Postgres unique-constraint
// error (code 23505), the backstop for concurrent signups with one email.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (p *Postgres) CreateUser(ctx context.Context, email, username, passwordHash string) (*users.User, error) {
	id := uuid.New().String()
	userID := uuid.New().String()

	query := `
	INSERT INTO users (id, user_id, email, username, password)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns

	u, err := scanUser(p.Db.QueryRowContext(ctx, query, id, userID, email, username, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicateEmail
		}
		return nil, err
	}

	return u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(p.Db.QueryRowContext(ctx, query, email))
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(p.Db.QueryRowContext(ctx, query, id))
}

// UpdateUserProfile patches username and/or email; empty arguments leave the
// stored value untouched.
func (p *Postgres) UpdateUserProfile(ctx context.Context, id, username, email string) (*users.User, error) {
	query := `
	UPDATE users
	SET username = COALESCE(NULLIF($2, ''), username),
	    email = COALESCE(NULLIF($3, ''), email),
	    updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns

	u, err := scanUser(p.Db.QueryRowContext(ctx, query, id, username, email))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicateEmail
		}
		return nil, err
	}

	return u, nil
}

func (p *Postgres) UpdateUserPreferences(ctx context.Context, id string, prefs users.Preferences) (*users.User, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE users SET preferences = $2, updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns

	return scanUser(p.Db.QueryRowContext(ctx, query, id, data))
}

// AddUserAvatar appends the path to the upload history and makes it the
// active avatar in one statement.
func (p *Postgres) AddUserAvatar(ctx context.Context, id, avatarPath string) (*users.User, error) {
	query := `
	UPDATE users
	SET avatars = array_append(avatars, $2), avatar = $2, updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns

	return scanUser(p.Db.QueryRowContext(ctx, query, id, avatarPath))
}

// SelectUserAvatar activates a previously uploaded avatar. The membership
// check rides on the UPDATE itself so concurrent uploads cannot race it.
func (p *Postgres) SelectUserAvatar(ctx context.Context, id, avatarPath string) (*users.User, error) {
	query := `
	UPDATE users
	SET avatar = $2, updated_at = now()
	WHERE id = $1 AND $2 = ANY(avatars)
	RETURNING ` + userColumns

	u, err := scanUser(p.Db.QueryRowContext(ctx, query, id, avatarPath))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAvatarNotOwned
		}
		return nil, err
	}

	return u, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	_, err := p.Db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (p *Postgres) IncrementPostCount(ctx context.Context, id string) (users.Stats, error) {
	var stats users.Stats

	query := `
	UPDATE users SET stats_posts = stats_posts + 1, updated_at = now()
	WHERE id = $1
	RETURNING stats_posts, stats_likes`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&stats.Posts, &stats.Likes)
	if err != nil {
		return users.Stats{}, err
	}

	return stats, nil
}

func (p *Postgres) GetUserStats(ctx context.Context, id string) (users.Stats, error) {
	var stats users.Stats

	query := `SELECT stats_posts, stats_likes FROM users WHERE id = $1`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&stats.Posts, &stats.Likes)
	if err != nil {
		return users.Stats{}, err
	}

	return stats, nil
}

func (p *Postgres) CountPostsByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int

	err := p.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE author = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

const postColumns = `p.id, p.title, p.author, p.reading_time, p.image, p.description, p.content, p.tags, p.links, p.likes, p.created_at, p.updated_at, COALESCE(u.username, ''), COALESCE(u.avatar, '')`

const postJoin = `FROM posts p LEFT JOIN users u ON p.author = u.id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*types.Post, error) {
	var post types.Post

	err := row.Scan(&post.ID, &post.Title, &post.AuthorID, &post.ReadingTime, &post.Image,
		&post.Description, &post.Content, pq.Array(&post.Tags), pq.Array(&post.Links),
		pq.Array(&post.Likes), &post.CreatedAt, &post.UpdatedAt,
		&post.Author.Username, &post.Author.Avatar)
	if err != nil {
		return nil, err
	}

	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Links == nil {
		post.Links = []string{}
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}

	return &post, nil
}

func (p *Postgres) CreatePost(ctx context.Context, authorID string, req types.CreatePostRequest) (*types.Post, error) {
	id := uuid.New().String()

	readingTime := req.ReadingTime
	if readingTime == "" {
		readingTime = "Quick"
	}

	query := `
	INSERT INTO posts (id, title, author, reading_time, image, description, content, tags, links)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at`

	post := types.Post{
		ID:          id,
		Title:       req.Title,
		AuthorID:    authorID,
		ReadingTime: readingTime,
		Image:       req.Image,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		Links:       req.Links,
		Likes:       []string{},
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Links == nil {
		post.Links = []string{}
	}

	err := p.Db.QueryRowContext(ctx, query, id, req.Title, authorID, readingTime, req.Image,
		req.Description, req.Content, pq.Array(post.Tags), pq.Array(post.Links)).
		Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// Expand the author reference the way list/get do.
	err = p.Db.QueryRowContext(ctx, `SELECT username, avatar FROM users WHERE id = $1`, authorID).
		Scan(&post.Author.Username, &post.Author.Avatar)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &post, nil
}

func (p *Postgres) ListPosts(ctx context.Context) ([]types.Post, error) {
	query := `SELECT ` + postColumns + ` ` + postJoin + ` ORDER BY p.created_at DESC`

	rows, err := p.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []types.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

func (p *Postgres) GetPostByID(ctx context.Context, id string) (*types.Post, error) {
	query := `SELECT ` + postColumns + ` ` + postJoin + ` WHERE p.id = $1`
	return scanPost(p.Db.QueryRowContext(ctx, query, id))
}
