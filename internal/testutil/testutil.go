package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"catalogapi/internal/auth"
	"catalogapi/internal/platform/crypto"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs every token minted by this package.
const TestSecret = "test-secret-key"

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID string, roles ...string) string {
	token, _, _ := crypto.GenerateToken(secret, userID, roles, time.Hour)
	return token
}

// LibrarianToken is a valid token holding ROLE_LIBRARIAN.
func LibrarianToken() string {
	return GenerateTestToken(TestSecret, "librarian-1", auth.RoleLibrarian)
}

// UserToken is a valid token holding ROLE_USER.
func UserToken() string {
	return GenerateTestToken(TestSecret, "reader-1", auth.RoleUser)
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID string, roles ...string) string {
	c := crypto.Claims{
		Sub:   userID,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing. A string body is sent
// verbatim; anything else is JSON encoded.
func NewRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		reader = bytes.NewReader(bodyBytes)
	}
	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// DecodeJSON decodes the recorded body into T.
func DecodeJSON[T any](w *httptest.ResponseRecorder) (T, error) {
	var v T
	err := json.NewDecoder(w.Body).Decode(&v)
	return v, err
}

// ErrorCode returns error.code from an error envelope, or "" if absent.
func ErrorCode(w *httptest.ResponseRecorder) string {
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return env.Error.Code
}
