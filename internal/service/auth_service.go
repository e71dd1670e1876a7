package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"legalflow/internal/export"
	"legalflow/internal/model"
	"legalflow/internal/repository"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("no user with this email")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrConsentRequired    = errors.New("consent to personal data processing is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrInvalidEmail       = errors.New("email is required")
	ErrUserExists         = repository.ErrUserExists
)

// RowSender exports registration rows without blocking the caller.
type RowSender interface {
	Send(row export.Row)
}

// AuthService handles registration, login and session tokens
type AuthService struct {
	users       repository.UserRepo
	sessions    repository.SessionRepo
	exporter    RowSender
	broadcaster Broadcaster
	jwtSecret   []byte
	ttl         time.Duration
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo, sessions repository.SessionRepo, secret string, ttl time.Duration) *AuthService {
	if secret == "" {
		log.Println("[Auth] Warning: JWT_SECRET not set, using development secret")
		secret = "legalflow-dev-secret-change-in-production"
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		broadcaster: nopBroadcaster{},
		jwtSecret:   []byte(secret),
		ttl:         ttl,
		now:         time.Now,
	}
}

// SetBroadcaster sets the hub whose connections are closed on logout
func (s *AuthService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetExporter sets where new registrations are copied
func (s *AuthService) SetExporter(e RowSender) {
	s.exporter = e
}

// Register creates the account, starts its session and exports the registration
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "":
		return nil, ErrInvalidEmail
	case !req.ConsentPersonalData:
		return nil, ErrConsentRequired
	case len(req.Password) < minPasswordLength:
		return nil, ErrWeakPassword
	}

	now := s.now()
	user := &model.User{
		Email:               email,
		Password:            req.Password,
		ConsentPersonalData: req.ConsentPersonalData,
		ConsentMarketing:    req.ConsentMarketing,
		RegisteredAt:        now,
		LastLoginAt:         now,
		Profile:             req.Profile,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[Auth] Registered %s", email)

	if s.exporter != nil {
		s.exporter.Send(export.RowFromUser(user, now))
	}
	return s.startSession(ctx, email)
}

// Login checks the credentials and starts a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidEmail
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Password != password {
		return nil, ErrInvalidCredentials
	}

	user.LastLoginAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.startSession(ctx, user.Email)
}

// Logout ends the current session and drops its live connections
func (s *AuthService) Logout(ctx context.Context) error {
	email, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if email != "" {
		s.broadcaster.DisconnectUser(email)
		log.Printf("[Auth] Logged out %s", email)
	}
	return nil
}

// Current returns the logged-in user, or nil when nobody is logged in
func (s *AuthService) Current(ctx context.Context) (*model.User, error) {
	email, err := s.sessions.Current(ctx)
	if err != nil || email == "" {
		return nil, err
	}
	return s.users.GetByEmail(ctx, email)
}

func (s *AuthService) startSession(ctx context.Context, email string) (*model.LoginResponse, error) {
	if err := s.sessions.SetCurrent(ctx, email); err != nil {
		return nil, err
	}
	now := s.now()
	claims := &model.SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: tokenString, Email: email}, nil
}

// ValidateToken validates a session JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
