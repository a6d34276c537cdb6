package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arrendix/protecciones/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access-token payload issued to staff and brokers.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// User is the authenticated principal of a request.
type User struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// Result is what a Verifier reports for a bearer token.
type Result struct {
	Success bool
	User    User
	Error   string
}

// Verifier authenticates a raw bearer token.
type Verifier interface {
	Verify(token string) Result
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(cfg config.AuthConfig) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

func (v *JWTVerifier) ParseAndValidate(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := new(Claims)
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify never fails hard: problems are reported in Result.Error.
func (v *JWTVerifier) Verify(tokenStr string) Result {
	if strings.TrimSpace(tokenStr) == "" {
		return Result{Error: "no token provided"}
	}
	claims, err := v.ParseAndValidate(tokenStr)
	if err != nil {
		return Result{Error: "invalid or expired token"}
	}
	role, ok := ParseRole(claims.Role)
	if !ok || claims.UserID == "" {
		return Result{Error: "token carries no usable identity"}
	}
	return Result{
		Success: true,
		User:    User{ID: claims.UserID, Role: role, Email: claims.Email},
	}
}

// NewToken signs a token for u. It backs the `token` CLI command used by
// operators and tests.
func NewToken(cfg config.AuthConfig, u User, now time.Time) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("auth secret is empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
