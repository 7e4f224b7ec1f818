package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	jwtService := jwt.New("test_secret", time.Hour)
	adminToken, err := jwtService.NewToken(domain.Account{Id: 1, Handle: "root", Admin: true})
	require.NoError(t, err)
	userToken, err := jwtService.NewToken(domain.Account{Id: 2, Handle: "alice", Admin: false})
	require.NoError(t, err)

	tests := []struct {
		name           string
		adminOnly      bool
		cookie         *http.Cookie
		header         string
		expectedStatus int
		expectedId     domain.AccountId
	}{
		{
			name:           "valid cookie",
			cookie:         &http.Cookie{Name: "accessToken", Value: userToken},
			expectedStatus: http.StatusOK,
			expectedId:     2,
		},
		{
			name:           "valid bearer header",
			header:         "Bearer " + userToken,
			expectedStatus: http.StatusOK,
			expectedId:     2,
		},
		{
			name:           "admin on admin route",
			adminOnly:      true,
			cookie:         &http.Cookie{Name: "accessToken", Value: adminToken},
			expectedStatus: http.StatusOK,
			expectedId:     1,
		},
		{
			name:           "non-admin on admin route",
			adminOnly:      true,
			cookie:         &http.Cookie{Name: "accessToken", Value: userToken},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			cookie:         &http.Cookie{Name: "accessToken", Value: "garbage"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler := Auth(jwtService, tt.adminOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				account := AccountFromContext(r)
				require.NotNil(t, account)
				assert.Equal(t, tt.expectedId, account.Id)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestAccountFromContext_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.com", nil)
	assert.Nil(t, AccountFromContext(req))
}
