package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m, err := NewManager(testSecret, WithClock(clock.Now))
	require.NoError(t, err)
	return m, clock
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	_, err := NewManager("short")
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAndVerify(t *testing.T) {
	m, clock := newTestManager(t)

	issued, err := m.Issue("prop-1", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(DefaultTTL), issued.ExpiresAt)
	assert.NotEmpty(t, issued.UniqueID)
	assert.Equal(t, 2, strings.Count(issued.Token, "."))

	claims, err := m.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "prop-1", claims.ProposalID)
	assert.Equal(t, 3, claims.DocumentVersion)
	assert.Equal(t, issued.UniqueID, claims.UniqueID)
	assert.True(t, claims.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestIssue_PayloadCarriesOnlyProtocolFields(t *testing.T) {
	m, _ := newTestManager(t)
	issued, err := m.Issue("prop-1", 1, time.Hour)
	require.NoError(t, err)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(issued.Token, ".")[1])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"pid", "v", "exp", "jti"}, keys)
}

func TestVerifyFor_RejectsOtherProposal(t *testing.T) {
	m, _ := newTestManager(t)
	issued, err := m.Issue("prop-A", 1, time.Hour)
	require.NoError(t, err)

	_, err = m.VerifyFor(issued.Token, "prop-B")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyFor(issued.Token, "prop-A")
	assert.NoError(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	m, clock := newTestManager(t)
	issued, err := m.Issue("prop-1", 1, time.Hour)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Hour)
	_, err = m.Verify(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsTamperingAndGarbage(t *testing.T) {
	m, _ := newTestManager(t)
	issued, err := m.Issue("prop-1", 1, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(issued.Token, ".")

	forged, _ := json.Marshal(map[string]any{"pid": "prop-2", "v": 1, "exp": time.Now().Add(time.Hour).Unix(), "jti": "x"})
	swapped := parts[0] + "." + base64.RawURLEncoding.EncodeToString(forged) + "." + parts[2]

	other, err := NewManager(strings.Repeat("z", MinSecretBytes))
	require.NoError(t, err)
	foreign, err := other.Issue("prop-1", 1, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"pid": "prop-1", "v": 1, "exp": time.Now().Add(time.Hour).Unix(), "jti": "x"})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"two segments":    parts[0] + "." + parts[1],
		"payload swapped": swapped,
		"foreign key":     foreign.Token,
		"alg none":        noneToken,
		"truncated sig":   parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-2],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestHashUniqueID(t *testing.T) {
	h := HashUniqueID("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashUniqueID("abc"))
	assert.NotEqual(t, h, HashUniqueID("abd"))
	assert.NotContains(t, h, "abc")
}
