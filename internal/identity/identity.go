// Package identity resolves an inbound bearer credential to a stable
// external subject and ensures a local User row exists for it. It is the
// core's only dependency on the identity provider collaborator that
// spec.md §1 treats as external; everything downstream of Resolve deals
// only in local user ids.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/alphabot-ai/flicker/internal/store"
)

var ErrInvalidToken = errors.New("identity: invalid or expired bearer token")

// Viewer is the resolved caller of an authenticated request.
type Viewer struct {
	UserID          string
	ExternalSubject string
	DisplayName     string
}

// Claims is the JWT payload the identity provider issues. Subject (`sub`)
// is the stable external subject; Email and Name are optional.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Resolver validates a bearer credential and returns a Viewer, creating
// the backing User row on first sight of a given external subject.
type Resolver interface {
	Resolve(ctx context.Context, bearer string) (*Viewer, error)
}

// JWTResolver verifies HMAC-signed bearer JWTs. A JWKS-backed multi-issuer
// resolver is a documented extension point, not implemented here (see
// DESIGN.md).
type JWTResolver struct {
	secret []byte
	store  *store.Store
	cache  *lru.LRU[string, *Viewer]
}

func NewJWTResolver(secret string, s *store.Store, cacheSize int, cacheTTL time.Duration) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		store:  s,
		cache:  lru.NewLRU[string, *Viewer](cacheSize, nil, cacheTTL),
	}
}

func (r *JWTResolver) Resolve(ctx context.Context, bearer string) (*Viewer, error) {
	if v, ok := r.cache.Get(bearer); ok {
		return v, nil
	}

	claims, err := r.parse(bearer)
	if err != nil {
		return nil, err
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.Subject
	}

	u, err := r.store.EnsureUser(ctx, claims.Subject, displayName)
	if err != nil {
		return nil, fmt.Errorf("identity: ensure user: %w", err)
	}

	viewer := &Viewer{UserID: u.ID, ExternalSubject: u.ExternalSubject, DisplayName: u.DisplayName}
	r.cache.Add(bearer, viewer)
	return viewer, nil
}

func (r *JWTResolver) parse(bearer string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(bearer, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
