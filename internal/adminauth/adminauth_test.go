package adminauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testSigner(now time.Time) *Signer {
	s := NewSigner([]byte("test-secret"))
	s.now = func() time.Time { return now }
	return s
}

func TestSignerRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 29, 12, 0, 0, 0, time.UTC)
	s := testSigner(now)

	token := s.Issue()
	ts, sig, ok := strings.Cut(token, ".")
	require.True(t, ok)
	assert.Equal(t, "1774785600", ts)
	assert.Len(t, sig, 64)

	assert.NoError(t, s.Verify(token))
}

func TestSignerExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 29, 12, 0, 0, 0, time.UTC)
	token := testSigner(issued).Issue()

	assert.NoError(t, testSigner(issued.Add(6*24*time.Hour)).Verify(token))
	assert.NoError(t, testSigner(issued.Add(MaxAge-time.Second)).Verify(token))
	assert.ErrorIs(t, testSigner(issued.Add(MaxAge)).Verify(token), ErrExpiredToken)
	assert.ErrorIs(t, testSigner(issued.Add(8*24*time.Hour)).Verify(token), ErrExpiredToken)
	assert.ErrorIs(t, testSigner(issued.Add(-time.Hour)).Verify(token), ErrExpiredToken)
}

func TestSignerRejectsTampering(t *testing.T) {
	now := time.Date(2026, 3, 29, 12, 0, 0, 0, time.UTC)
	s := testSigner(now)
	token := s.Issue()
	ts, sig, _ := strings.Cut(token, ".")

	other := NewSigner([]byte("other-secret"))
	other.now = s.now

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", ts + sig},
		{"no signature", ts + "."},
		{"shifted timestamp", "1774785601." + sig},
		{"flipped signature", ts + "." + strings.Repeat("0", len(sig))},
		{"non numeric timestamp", "abc." + s.sign("abc")},
		{"other secret", other.Issue()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Verify(tt.token), ErrInvalidToken)
		})
	}
}

func TestAuthenticator(t *testing.T) {
	plain, err := NewAuthenticator("hunter2", "")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed, err := NewAuthenticator("ignored", string(hash))
	require.NoError(t, err)

	for name, a := range map[string]*Authenticator{"plaintext": plain, "hash": hashed} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, a.Enabled())
			assert.NoError(t, a.Check("hunter2"))
			assert.ErrorIs(t, a.Check("hunter3"), ErrInvalidPassword)
			assert.ErrorIs(t, a.Check(""), ErrInvalidPassword)
		})
	}

	_, err = NewAuthenticator("", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func TestAuthenticatorDisabled(t *testing.T) {
	a, err := NewAuthenticator("", "")
	require.NoError(t, err)
	assert.False(t, a.Enabled())
	assert.ErrorIs(t, a.Check("anything"), ErrNotConfigured)
}

func testGate(t *testing.T, password string) *Gate {
	t.Helper()
	a, err := NewAuthenticator(password, "")
	require.NoError(t, err)
	return &Gate{Auth: a, Signer: NewSigner([]byte("k")), Secure: true}
}

func TestGateLogin(t *testing.T) {
	g := testGate(t, "pw")

	rec := httptest.NewRecorder()
	assert.ErrorIs(t, g.Login(rec, "nope"), ErrInvalidPassword)
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	require.NoError(t, g.Login(rec, "pw"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.False(t, g.Allowed(req))
	req.AddCookie(c)
	assert.True(t, g.Allowed(req))
}

func TestGateLogout(t *testing.T) {
	g := testGate(t, "pw")
	rec := httptest.NewRecorder()
	g.Logout(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGateOpenWithoutPassword(t *testing.T) {
	g := testGate(t, "")
	assert.True(t, g.Allowed(httptest.NewRequest(http.MethodGet, "/admin", nil)))
}
