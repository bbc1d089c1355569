// Package token issues and verifies approval tokens for public proposal links.
//
// A token is a compact HS256 JWT (header.payload.signature, base64url) whose
// payload carries exactly pid, v, exp and jti. The manager holds no state:
// single-use tracking lives on the proposal record, which stores only
// HashUniqueID(jti).
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTTL     = 14 * 24 * time.Hour
	MinSecretBytes = 32
)

var (
	// ErrInvalidToken covers malformed, expired, tampered and mis-bound tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = errors.New("token secret must be at least 32 bytes")
)

// Claims is the verified payload of an approval token.
type Claims struct {
	ProposalID      string
	DocumentVersion int
	ExpiresAt       time.Time
	UniqueID        string
}

// Issued is returned by Issue. Token goes to the customer, UniqueID is hashed
// before it is persisted.
type Issued struct {
	Token     string
	UniqueID  string
	ExpiresAt time.Time
}

type approvalClaims struct {
	ProposalID      string `json:"pid"`
	DocumentVersion int    `json:"v"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithDefaultTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

func NewManager(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	m := &Manager{
		secret:     []byte(secret),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue mints a token for one document version of one proposal.
// A non-positive ttl uses the manager default.
func (m *Manager) Issue(proposalID string, documentVersion int, ttl time.Duration) (Issued, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return Issued{}, errors.New("token: empty proposal id")
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	jti := uuid.NewString()
	expiresAt := m.now().UTC().Add(ttl).Truncate(time.Second)
	claims := approvalClaims{
		ProposalID:      proposalID,
		DocumentVersion: documentVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, UniqueID: jti, ExpiresAt: expiresAt}, nil
}

// Verify checks structure, signature and expiry. Every failure is ErrInvalidToken.
func (m *Manager) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Count(raw, ".") != 2 {
		return Claims{}, ErrInvalidToken
	}

	var parsed approvalClaims
	tok, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	if parsed.ProposalID == "" || parsed.ID == "" || parsed.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		ProposalID:      parsed.ProposalID,
		DocumentVersion: parsed.DocumentVersion,
		ExpiresAt:       parsed.ExpiresAt.Time.UTC(),
		UniqueID:        parsed.ID,
	}, nil
}

// VerifyFor is Verify plus the binding check against the proposal id in the URL.
func (m *Manager) VerifyFor(raw, proposalID string) (Claims, error) {
	claims, err := m.Verify(raw)
	if err != nil {
		return Claims{}, err
	}
	if claims.ProposalID != strings.TrimSpace(proposalID) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// HashUniqueID is the only form of a token that is ever persisted.
func HashUniqueID(uniqueID string) string {
	sum := sha256.Sum256([]byte(uniqueID))
	return hex.EncodeToString(sum[:])
}
