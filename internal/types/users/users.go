package users

import "time"

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SelectAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// Preferences is replaced as a whole record on update; an empty body resets
// every option to its zero value.
type Preferences struct {
	DarkMode bool `json:"darkMode"`
}

type Stats struct {
	Posts int `json:"posts"`
	Likes int `json:"likes"`
}

// User is the credential-store record. Password carries the bcrypt digest and
// is never serialized.
type User struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	Password    string      `json:"-"`
	Avatar      string      `json:"avatar"`
	Avatars     []string    `json:"avatars"`
	Preferences Preferences `json:"preferences"`
	Stats       Stats       `json:"stats"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
