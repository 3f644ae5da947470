package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrfields/extract-json-service/internal/models"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "mobile-app", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "mobile-app", claims.Client)
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("other", "u", "", time.Minute)
		require.NoError(t, err)
		_, err = ValidateToken(testSecret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "u", "", -time.Minute)
		require.NoError(t, err)
		_, err = ValidateToken(testSecret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateToken(testSecret, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken(testSecret, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := GetClaimsFromContext(r.Context()); err == nil {
			w.Header().Set("X-Subject", claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(testSecret, "/", "/health")(next)
}

func TestMiddleware(t *testing.T) {
	valid, err := GenerateToken(testSecret, "user-1", "", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name        string
		method      string
		path        string
		header      string
		wantStatus  int
		wantSubject string
	}{
		{"open root", http.MethodGet, "/", "", http.StatusOK, ""},
		{"open health", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "/extract-json", "", http.StatusOK, ""},
		{"missing header", http.MethodPost, "/extract-json", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodPost, "/extract-json", "Basic " + valid, http.StatusUnauthorized, ""},
		{"bad token", http.MethodPost, "/extract-json", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", http.MethodPost, "/extract-json", "Bearer " + valid, http.StatusOK, "user-1"},
		{"lowercase scheme", http.MethodPost, "/extract-json", "bearer " + valid, http.StatusOK, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protectedHandler(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSubject, rec.Header().Get("X-Subject"))

			if tt.wantStatus == http.StatusUnauthorized {
				var body models.ExtractionResult
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.Equal(t, models.MessageUnauthorized, body.Message)
			}
		})
	}
}

func TestGetClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetClaimsFromContext(req.Context())
	assert.ErrorIs(t, err, ErrNoClaims)
}
