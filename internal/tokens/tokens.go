package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Manushivuz/IISPPR-MainSite/internal/admins"
	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/middleware"
)

// GenerateAccessToken creates a signed HS256 access token for the admin
func GenerateAccessToken(cfg *config.Config, a *admins.Admin, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      a.ID.Hex(),
		"username": a.Username,
		"email":    a.Email,
		"role":     a.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// claimsToken exposes verified claims through middleware.Token.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verifier checks tokens issued by GenerateAccessToken.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if _, ok := claims["exp"]; !ok {
		return nil, errors.New("verify token: missing exp claim")
	}
	return &claimsToken{claims: claims}, nil
}

// Remaining is how long a token with these claims stays valid; zero when expired or unknown.
func Remaining(claims map[string]interface{}, now time.Time) time.Duration {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return 0
	}
	d := time.Unix(int64(exp), 0).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
