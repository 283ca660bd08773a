// Package auth provides user accounts and JWT session tokens.
package auth

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles. Approvers carry manager or admin; cashiers can sell and count.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

var validRoles = map[string]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleCashier: true,
}

// CanApprove reports whether the role may approve reconciliations.
func CanApprove(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// User is one account.
type User struct {
	ID           id.ID     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, userID id.ID) (*User, error)
}

// Claims is the JWT payload.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles registration, login and token verification.
type Service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
}

func NewService(repo Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password, role string) (*User, error) {
	if username == "" || len(password) < 8 {
		return nil, apperror.NewValidation("username is required and password must be at least 8 characters")
	}
	if !validRoles[role] {
		return nil, apperror.NewValidation("unknown role: " + role)
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, apperror.NewDuplicate("user", "username", username)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	u := User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil, apperror.NewUnauthorized("invalid credentials")
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, apperror.NewUnauthorized("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperror.NewUnauthorized("invalid credentials")
	}

	now := time.Now().UTC()
	claims := Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperror.NewInternal(err)
	}
	return token, u, nil
}

// VerifyToken parses and validates a token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.NewUnauthorized("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token").WithCause(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token")
	}
	return claims, nil
}
