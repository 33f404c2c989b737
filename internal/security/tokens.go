package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed, expired or foreign tokens.
	ErrInvalidToken = errors.New("invalid token")

	errWeakSecret = errors.New("jwt secret must not be empty")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	OrgID     string `json:"org_id"`
	SessionID string `json:"session_id"`
	TokenType string `json:"typ"`
}

// Principal is what a validated token says about the caller.
type Principal struct {
	UserID    string
	OrgID     string
	SessionID string
	JTI       string
	ExpiresAt time.Time
}

// TokenProvider issues and validates HS256 access and refresh tokens.
type TokenProvider struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenProvider(secret, issuer, audience string, accessTTL time.Duration) (*TokenProvider, error) {
	if secret == "" {
		return nil, errWeakSecret
	}
	return &TokenProvider{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

// IssueAccess returns a short-lived access token and its expiry.
func (p *TokenProvider) IssueAccess(sessionID, userID, orgID string) (string, time.Time, error) {
	expiresAt := p.now().UTC().Add(p.accessTTL)
	token, _, err := p.issue(tokenTypeAccess, sessionID, userID, orgID, expiresAt)
	return token, expiresAt, err
}

// IssueRefresh returns a refresh token expiring at expiresAt and its jti.
// The caller stores the jti on the session for rotation.
func (p *TokenProvider) IssueRefresh(sessionID, userID, orgID string, expiresAt time.Time) (token, jti string, err error) {
	return p.issue(tokenTypeRefresh, sessionID, userID, orgID, expiresAt)
}

func (p *TokenProvider) issue(typ, sessionID, userID, orgID string, expiresAt time.Time) (string, string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", "", err
	}
	now := p.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		OrgID:     orgID,
		SessionID: sessionID,
		TokenType: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (p *TokenProvider) ValidateAccess(token string) (*Principal, error) {
	return p.validate(token, tokenTypeAccess)
}

func (p *TokenProvider) ValidateRefresh(token string) (*Principal, error) {
	return p.validate(token, tokenTypeRefresh)
}

func (p *TokenProvider) validate(tokenString, typ string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != typ || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{
		UserID:    claims.Subject,
		OrgID:     claims.OrgID,
		SessionID: claims.SessionID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
