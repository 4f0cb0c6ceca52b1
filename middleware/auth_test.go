package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	var gotCaller string
	var gotOK bool
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller, gotOK = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCaller string
	}{
		{
			name: "valid token",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"uuid": "caller-1",
				"exp":  time.Now().Add(time.Hour).Unix(),
			}, testSecret),
			wantStatus: http.StatusOK,
			wantCaller: "caller-1",
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong secret",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"uuid": "caller-1",
			}, []byte("other-secret")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"uuid": "caller-1",
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing uuid claim",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": "caller-1",
			}, testSecret),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotCaller, gotOK = "", false
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCaller != "" {
				assert.True(t, gotOK)
				assert.Equal(t, tc.wantCaller, gotCaller)
			}
		})
	}
}

func TestCallerIDWithoutAuthentication(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := CallerID(req.Context())
	assert.False(t, ok)
}

func TestRequireInternalKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("internal-key"), bcrypt.MinCost)
	require.NoError(t, err)

	handler := RequireInternalKey(string(hash))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{name: "valid key", key: "internal-key", wantStatus: http.StatusOK},
		{name: "missing key", key: "", wantStatus: http.StatusForbidden},
		{name: "wrong key", key: "guessed", wantStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/internal/participant/p1", nil)
			if tc.key != "" {
				req.Header.Set("X-Internal-Key", tc.key)
			}

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
