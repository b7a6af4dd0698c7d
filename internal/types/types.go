package types

import "time"

// Author is the expanded author reference returned with every post.
type Author struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"authorId"`
	Author      Author    `json:"author"`
	ReadingTime string    `json:"readingTime"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Links       []string  `json:"links"`
	Likes       []string  `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreatePostRequest carries the multipart form fields of POST /blogs; the
// optional image file travels alongside, outside this struct.
type CreatePostRequest struct {
	Title       string
	Description string
	Content     string
	ReadingTime string
	Tags        []string
	Links       []string
	Image       string
}
