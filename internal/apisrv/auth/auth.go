// Package auth issues and verifies the JWTs protecting the tracker API.
// Login is by master password; there are no per-user accounts.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/donnaphatt/product-tracking-app/internal/auth/jwt"
	"github.com/donnaphatt/product-tracking-app/internal/auth/pwhash"
)

// Server implements the auth endpoints.
type Server struct {
	pwhash     *pwhash.PasswordHasher
	jwtAuth    *jwtauth.JWTAuth
	jwtTTL     time.Duration
	masterHash string
}

// Config contains the configuration for the auth server.
type Config struct {
	JWTSecret                string `mapstructure:"jwt_secret"`
	MasterPassword           string `mapstructure:"master_password"`
	PasswordHasherSaltSize   int    `mapstructure:"password_hasher_salt_size"`
	PasswordHasherIterations int    `mapstructure:"password_hasher_iterations"`
	JWTTTL                   string `mapstructure:"jwt_ttl"`
}

// New creates a new auth server.
func New(c *Config) (*Server, error) {
	ph, err := pwhash.New(c.PasswordHasherSaltSize, c.PasswordHasherIterations)
	if err != nil {
		return nil, err
	}
	hash, err := ph.HashPassword(c.MasterPassword)
	if err != nil {
		return nil, err
	}
	if err := ph.Validate(c.MasterPassword, hash); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("can't parse jwt ttl: %w", err)
	}

	return &Server{
		pwhash:     ph,
		jwtAuth:    jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		jwtTTL:     ttl,
		masterHash: hash,
	}, nil
}

// Login exchanges the master password for a token.
func (s *Server) Login(password string) (string, error) {
	if err := s.pwhash.Validate(password, s.masterHash); err != nil {
		if errors.Is(err, pwhash.ErrMismatch) {
			return "", pwhash.ErrMismatch
		}
		return "", fmt.Errorf("can't validate password: %w", err)
	}
	return jwt.NewTokenWithSubject(s.jwtAuth, s.jwtTTL, "merchant")
}

// WithAuth wraps a handler with token verification.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return jwtauth.Verifier(s.jwtAuth)(jwtauth.Authenticator(next))
}

// Router returns the /auth route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", s.handleLogin)
	return r
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token, err := s.Login(req.Password)
	if err != nil {
		if errors.Is(err, pwhash.ErrMismatch) {
			http.Error(w, "wrong password", http.StatusUnauthorized)
			return
		}
		slog.Default().ErrorContext(ctx, "can't login",
			slog.String("err", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{AuthToken: token})
}
