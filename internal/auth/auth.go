package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	CompanyID   int64        `json:"company_id"`
	IsOwner     bool         `json:"is_owner"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Actor is the slice of the authenticated user that domain services
// need to authorize and attribute a mutation.
type Actor struct {
	UserID      int64
	CompanyID   int64
	IsOwner     bool
	Permissions []Permission
}

func (u *User) Actor() Actor {
	return Actor{
		UserID:      u.ID,
		CompanyID:   u.CompanyID,
		IsOwner:     u.IsOwner,
		Permissions: u.Permissions,
	}
}

// Claims represents JWT token claims
type Claims struct {
	UserID    int64 `json:"user_id"`
	CompanyID int64 `json:"company_id"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenGeneratorAPI creates and validates tokens.
type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, companyID int64) (token string, err error)
	GenerateRefreshToken(userID, companyID int64) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
