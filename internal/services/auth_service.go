package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"webshop/internal/auth"
	"webshop/internal/domain"
	"webshop/internal/events"
	"webshop/internal/repos"
	"webshop/internal/validate"
)

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.TokenManager
	Events events.Publisher
}

func NewAuthService(users *repos.UserRepo, tokens *auth.TokenManager, pub events.Publisher) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Events: pub}
}

type RegisterInput struct {
	Email    string       `json:"email"`
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     *domain.Role `json:"role"`
}

// Register creates a user account. Role defaults to CUSTOMER when
// omitted.
func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, fmt.Errorf("%w: email", domain.ErrValidation)
	}
	username, ok := validate.Username(in.Username)
	if !ok {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", domain.ErrValidation)
	}
	if !validate.Password(in.Password) {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	role := domain.RoleCustomer
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: role", domain.ErrValidation)
		}
		role = *in.Role
	}

	if taken, err := s.Users.EmailTaken(email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if taken, err := s.Users.UsernameTaken(username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.Create(email, username, string(hash), role)
	if err != nil {
		return nil, err
	}

	s.Events.Emit(context.Background(), events.Event{
		EventType: "user_registered",
		UserID:    u.ID,
		Data:      map[string]any{"email": u.Email, "role": string(u.Role)},
	})
	return u, nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}

	s.Events.Emit(context.Background(), events.Event{
		EventType: "user_login",
		UserID:    u.ID,
		Data:      map[string]any{"role": string(u.Role)},
	})
	return token, u, nil
}

// UserFromToken resolves a bearer token to its user row, or an
// ErrUnauthorized when the token or user is invalid.
func (s *AuthService) UserFromToken(token string) (*domain.User, error) {
	claims := s.Tokens.Verify(token)
	if claims == nil {
		return nil, fmt.Errorf("could not validate credentials: %w", domain.ErrUnauthorized)
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("could not validate credentials: %w", domain.ErrUnauthorized)
	}
	u, err := s.Users.ByID(uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not validate credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
