package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/guestdesk/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the signed user profile.
type Claims struct {
	UserID    int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Public returns the profile carried by the token.
func (c *Claims) Public() models.UserPublic {
	return models.UserPublic{
		ID:        c.UserID,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		IsAdmin:   c.IsAdmin,
	}
}

// JWTService handles token generation and validation.
type JWTService struct {
	secret   []byte
	expire   time.Duration
	remember time.Duration
	now      func() time.Time
}

// NewJWTService creates a JWT service. remember is the lifetime of remember-me tokens.
func NewJWTService(secret string, expire, remember time.Duration) *JWTService {
	return &JWTService{
		secret:   []byte(secret),
		expire:   expire,
		remember: remember,
		now:      time.Now,
	}
}

// Generate creates a new JWT for the user and returns it with its expiry.
func (s *JWTService) Generate(u *models.User, remember bool) (string, time.Time, error) {
	now := s.now()
	ttl := s.expire
	if remember {
		ttl = s.remember
	}
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and validates a JWT, returning claims or error.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
