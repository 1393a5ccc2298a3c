package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"caixa/internal/docstore"
	apperrors "caixa/internal/errors"
	"caixa/internal/models"
)

// authService implements allow-list authorization. A session exists only
// while the process holds it: sign-out revokes the token immediately, and
// there is no persistence of sessions across restarts.
type authService struct {
	store  docstore.Store
	secret []byte
	expiry time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session // keyed by token hash
}

// NewAuthService creates a new AuthServicer signing session tokens with the
// given secret.
func NewAuthService(store docstore.Store, secret string, expiry time.Duration) AuthServicer {
	return &authService{
		store:    store,
		secret:   []byte(secret),
		expiry:   expiry,
		sessions: make(map[string]*Session),
	}
}

// sessionClaims are the JWT claims carried by a session token.
type sessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Authenticate checks the normalized identifier against the allow-list
// collection. Empty input fails fast without touching storage. A missing
// allow-list document means NOT_AUTHORIZED; any storage fault propagates
// unchanged so the caller halts instead of guessing.
func (s *authService) Authenticate(ctx context.Context, identifier string) (*Session, error) {
	norm := models.NormalizeIdentifier(identifier)
	if norm == "" {
		return nil, apperrors.ErrNotAuthorized
	}

	if _, err := s.store.Get(ctx, models.AllowlistCollection, norm); err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotAuthorized
		}
		return nil, err
	}

	session := &Session{
		ID:        newSessionID(),
		Email:     norm,
		CreatedAt: time.Now().UTC(),
	}

	claims := &sessionClaims{
		Email:     session.Email,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.CreatedAt.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
			Issuer:    "caixa-api",
			Subject:   session.Email,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	session.Token = token

	s.mu.Lock()
	s.sessions[hashToken(token)] = session
	s.mu.Unlock()

	return session, nil
}

// Validate parses the bearer token and resolves it against the live session
// registry, so revoked tokens are rejected even before their JWT expiry.
func (s *authService) Validate(token string) (*Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	s.mu.RLock()
	session, ok := s.sessions[hashToken(token)]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return session, nil
}

// SignOut moves the session back to logged-out. Safe to call with an
// unknown or already revoked token.
func (s *authService) SignOut(token string) {
	s.mu.Lock()
	delete(s.sessions, hashToken(token))
	s.mu.Unlock()
}

// newSessionID returns a time-ordered UUIDv7, falling back to v4 when the
// random source fails.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// hashToken returns the SHA-256 hex digest of a token string, used as the
// registry key so raw tokens are never held as map keys.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
