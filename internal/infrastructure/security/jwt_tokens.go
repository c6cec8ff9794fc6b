package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	PublicID string `json:"uid"`
}

// JwtTokens issues and verifies HS256 bearer tokens.
type JwtTokens struct {
	secret  []byte
	expires time.Duration
	now     func() time.Time
}

func NewJwtTokens(secret string, expires time.Duration) *JwtTokens {
	return &JwtTokens{secret: []byte(secret), expires: expires, now: time.Now}
}

func (t *JwtTokens) Issue(p domain.Principal) (string, error) {
	now := t.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expires)),
		},
		Email:    p.Email,
		PublicID: p.PublicID.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *JwtTokens) Verify(token string) (domain.Principal, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Principal{}, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	publicID, err := uuid.Parse(claims.PublicID)
	if err != nil {
		return domain.Principal{}, errors.Join(domain.ErrUnauthorized, err)
	}
	return domain.Principal{UserID: userID, PublicID: publicID, Email: claims.Email}, nil
}
