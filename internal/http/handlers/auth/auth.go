package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/inkwell-dev/blog-service/internal/storage"
	"github.com/inkwell-dev/blog-service/internal/types/users"
	"github.com/inkwell-dev/blog-service/internal/utils/jwt"
	"github.com/inkwell-dev/blog-service/internal/utils/password"
	"github.com/inkwell-dev/blog-service/internal/utils/response"
)

const passwordSymbols = "@$!%*?&"

var errWeakPassword = errors.New("password must be at least 12 characters and include uppercase, lowercase, number, and symbol")

// checkPasswordStrength enforces the signup password policy: minimum 12
// characters, one of each class, and every character drawn from letters,
// digits, or the fixed symbol set.
func checkPasswordStrength(pw string) error {
	if len(pw) < 12 {
		return errWeakPassword
	}

	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return errWeakPassword
		}
	}

	if !lower || !upper || !digit || !symbol {
		return errWeakPassword
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp handles account registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body users.SignUpRequest true "Signup details"
// @Success 201 {object} map[string]string "Token and user id"
// @Failure 400 {object} response.Response "Validation error"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /auth/signup [post]
func SignUp(store storage.Storage, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.SignUpRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := checkPasswordStrength(req.Password); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		hashed, err := password.HashPassword(req.Password)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash password")))
			return
		}

		user, err := store.CreateUser(r.Context(), normalizeEmail(req.Email), strings.TrimSpace(req.Username), hashed)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				response.WriteJSON(w, http.StatusConflict, response.GeneralError(storage.ErrDuplicateEmail))
				return
			}
			slog.Error("Failed to create user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}

		token, err := jwt.CreateToken(user.ID, jwtSecret)
		if err != nil {
			slog.Error("Failed to issue token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}
		slog.Info("User created", slog.String("user_id", user.ID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"token":  token,
			"userId": user.ID,
		})
	}
}

// Login handles authentication
// @Summary Authenticate and issue a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body users.SignInRequest true "Login details"
// @Success 200 {object} map[string]string "Token and user id"
// @Failure 400 {object} response.Response "Invalid credentials"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /auth/login [post]
func Login(store storage.Storage, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.SignInRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Unknown email and wrong password answer identically so accounts
		// cannot be enumerated. Anything else from the store is a real failure.
		user, err := store.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid credentials")))
				return
			}
			slog.Error("Failed to fetch user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("server error")))
			return
		}

		if !password.CheckPasswordHash(req.Password, user.Password) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid credentials")))
			return
		}

		token, err := jwt.CreateToken(user.ID, jwtSecret)
		if err != nil {
			slog.Error("Failed to issue token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"token":  token,
			"userId": user.ID,
		})
	}
}

// Verify checks a bearer token without touching the store
// @Summary Verify a session token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Token is valid"
// @Failure 401 {object} response.Response "Invalid or expired token"
// @Router /auth/verify [get]
func Verify(jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("no token provided")))
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := jwt.ExtractUserIDFromToken(token, jwtSecret)
		if err != nil {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid or expired token")))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"valid": true,
			"user":  map[string]string{"id": userID},
		})
	}
}
