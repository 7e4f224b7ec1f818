package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/jwt"
)

type key int

const accountClaimsKey key = 0

// Auth decodes the access token from the accessToken cookie or the
// Authorization header and stores the caller's identity in the request
// context. With adminOnly set, non-admin callers get 403.
func Auth(jwtService jwt.JwtService, adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := tokenFromRequest(r)
			if err != nil {
				writeError(w, err)
				return
			}

			token, err := jwtService.DecodeToken(raw)
			if err != nil {
				writeError(w, err)
				return
			}

			claims, ok := token.Claims.(jwtlib.MapClaims)
			if !ok {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			uid, uidOk := claims["uid"].(float64)
			handle, handleOk := claims["handle"].(string)
			admin, adminOk := claims["admin"].(bool)
			if !uidOk || !handleOk || !adminOk {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			if adminOnly && !admin {
				http.Error(w, "Access denied", http.StatusForbidden)
				return
			}

			account := &domain.Account{
				Id:     domain.AccountId(uid),
				Handle: handle,
				Admin:  admin,
			}
			ctx := context.WithValue(r.Context(), accountClaimsKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func NeedAuth(jwtService jwt.JwtService) func(http.Handler) http.Handler {
	return Auth(jwtService, false)
}

func AdminOnly(jwtService jwt.JwtService) func(http.Handler) http.Handler {
	return Auth(jwtService, true)
}

// AccountFromContext returns the authenticated caller, or nil outside
// an Auth-wrapped handler.
func AccountFromContext(r *http.Request) *domain.Account {
	account, ok := r.Context().Value(accountClaimsKey).(*domain.Account)
	if !ok {
		return nil
	}
	return account
}

func tokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	return "", &apperr.Error{Message: "Please sign in", StatusCode: http.StatusUnauthorized}
}

func writeError(w http.ResponseWriter, err error) {
	if e, ok := err.(*apperr.Error); ok {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
