// Package session mints and reads the anonymous per-browser identity. The id
// is not a credential: it only keys progress and bookmark rows.
package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "session"

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid session")
)

var userIDPattern = regexp.MustCompile(`^user_\d+_[0-9a-z]+$`)

type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

// EnsureUserID returns the id carried by a valid session cookie. Requests
// without one (or with a tampered or expired one) get a freshly minted id,
// and the cookie is set on w.
func (m *Manager) EnsureUserID(w http.ResponseWriter, r *http.Request) (string, error) {
	userID, err := m.UserID(r)
	if err == nil {
		return userID, nil
	}

	userID, err = NewUserID(m.now())
	if err != nil {
		return "", err
	}

	token, err := m.sign(userID)
	if err != nil {
		return "", err
	}
	m.setCookie(w, token)

	return userID, nil
}

// UserID reads the id from the request's session cookie without minting.
func (m *Manager) UserID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNoSession
	}
	return m.verify(cookie.Value)
}

func (m *Manager) sign(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return tokenString, nil
}

func (m *Manager) verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid || !ValidUserID(claims.Subject) {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		Expires:  m.now().Add(m.maxAge),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// NewUserID returns an id of the form user_<unix millis>_<random base36>.
func NewUserID(now time.Time) (string, error) {
	// 36^9 keeps the suffix at up to nine characters.
	n, err := rand.Int(rand.Reader, big.NewInt(101559956668416))
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}
	return "user_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + strconv.FormatInt(n.Int64(), 36), nil
}

func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}
