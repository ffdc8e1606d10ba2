// Package testutil holds request and token helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"showcase/internal/platform/crypto"
)

// AdminToken signs a one-hour admin token for secret.
func AdminToken(secret string) string {
	token, _ := crypto.GenerateToken(secret, "test-admin", crypto.RoleAdmin, time.Hour)
	return token
}

// ExpiredToken signs an admin token that expired an hour ago.
func ExpiredToken(secret string) string {
	c := crypto.Claims{
		Sub:  "test-admin",
		Role: crypto.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "showcase",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	return token
}

// NewRequest creates a request with body JSON-encoded when non-nil.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth is NewRequest plus a bearer token.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Envelope is the decoded shape of every JSON response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

// DecodeEnvelope reads the recorder body into an Envelope.
func DecodeEnvelope(w *httptest.ResponseRecorder) (Envelope, error) {
	var env Envelope
	b, err := io.ReadAll(w.Result().Body)
	if err != nil {
		return env, err
	}
	err = json.Unmarshal(b, &env)
	return env, err
}
