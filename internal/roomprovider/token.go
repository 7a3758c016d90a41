package roomprovider

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VideoGrant scopes a token to a single room.
type VideoGrant struct {
	Room string `json:"room"`
}

type Grants struct {
	Identity string     `json:"identity"`
	Video    VideoGrant `json:"video"`
}

// AccessClaims is the payload of a vendor access token.
type AccessClaims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// TokenIssuer signs short-lived room access tokens with the API key secret.
type TokenIssuer struct {
	accountSID string
	apiKey     string
	apiSecret  []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenIssuer(accountSID, apiKey, apiSecret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{
		accountSID: accountSID,
		apiKey:     apiKey,
		apiSecret:  []byte(apiSecret),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (t *TokenIssuer) Issue(identity, roomName string) (string, error) {
	if identity == "" || roomName == "" {
		return "", fmt.Errorf("identity and room name are required")
	}
	now := t.now()
	claims := AccessClaims{
		Grants: Grants{
			Identity: identity,
			Video:    VideoGrant{Room: roomName},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", t.apiKey, now.UnixNano()),
			Issuer:    t.apiKey,
			Subject:   t.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"
	return token.SignedString(t.apiSecret)
}

// Parse verifies a token issued by this issuer. Used by the local provider
// and tests.
func (t *TokenIssuer) Parse(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.apiSecret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
