// Package adminauth gates the operator pages with a single shared password.
//
// A successful login yields a stateless token "<unix-seconds>.<hex-hmac>"
// signed with the session secret. Tokens expire after MaxAge; there is no
// server-side session table.
package adminauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const MaxAge = 7 * 24 * time.Hour

var (
	ErrNotConfigured   = errors.New("admin password is not configured")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrExpiredToken    = errors.New("session token expired")
)

// Signer issues and verifies session tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret, now: time.Now}
}

// RandomSecret returns a fresh 32-byte signing key. Tokens signed with it
// do not survive a restart.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	return b, nil
}

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Issue() string {
	ts := strconv.FormatInt(s.now().Unix(), 10)
	return ts + "." + s.sign(ts)
}

func (s *Signer) Verify(token string) error {
	ts, sig, ok := strings.Cut(token, ".")
	if !ok || ts == "" || sig == "" {
		return ErrInvalidToken
	}
	want := s.sign(ts)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return ErrInvalidToken
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	age := s.now().Sub(time.Unix(sec, 0))
	if age < 0 || age >= MaxAge {
		return ErrExpiredToken
	}
	return nil
}

// Authenticator checks the operator password.
type Authenticator struct {
	hash []byte
}

// NewAuthenticator accepts either a bcrypt hash or a plaintext password.
// The hash wins when both are set. With neither, the gate is disabled.
func NewAuthenticator(password, passwordHash string) (*Authenticator, error) {
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("parsing admin password hash: %w", err)
		}
		return &Authenticator{hash: []byte(passwordHash)}, nil
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
		return &Authenticator{hash: hash}, nil
	default:
		return &Authenticator{}, nil
	}
}

// Enabled reports whether a password is configured. When it is not, the
// admin area is open.
func (a *Authenticator) Enabled() bool { return len(a.hash) > 0 }

func (a *Authenticator) Check(password string) error {
	if !a.Enabled() {
		return ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
