package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
	internal_jwt "github.com/foodbridge-dev/foodbridge/internal/jwt"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

// BlockedCache is the read side of the blocked-user cache.
type BlockedCache interface {
	IsBlocked(userId domain.UserId) bool
}

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

var (
	errNoToken       = errors.New("no access token")
	errInvalidClaims = errors.New("invalid token claims")
)

type Auth struct {
	jwtService   internal_jwt.JwtService
	blockedCache BlockedCache
}

func NewAuth(jwtService internal_jwt.JwtService, blockedCache BlockedCache) *Auth {
	return &Auth{jwtService: jwtService, blockedCache: blockedCache}
}

// NeedAuth returns middleware that requires a valid session.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly returns middleware that additionally requires the ADMIN role.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, unauthorized(err))
				return
			}
			// Blocked users lose access immediately, even with a live token.
			if a.blockedCache != nil && a.blockedCache.IsBlocked(user.Id) {
				http.Error(w, "Account restricted", http.StatusForbidden)
				return
			}
			if adminOnly && user.Role != domain.RoleAdmin {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractUser extracts and validates user claims from the JWT token.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	// Cookie first (browser clients), then Authorization header (API clients).
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return nil, errInvalidClaims
	}
	name, ok := claims["name"].(string)
	if !ok {
		return nil, errInvalidClaims
	}
	role, ok := claims["role"].(string)
	if !ok || !domain.Role(role).Valid() {
		return nil, errInvalidClaims
	}

	return &domain.User{
		Id:   int64(uidFloat),
		Name: name,
		Role: domain.Role(role),
	}, nil
}

// GetUserFromContext returns the authenticated user or nil.
func GetUserFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(UserClaimsKey).(*domain.User)
	return user
}

func unauthorized(err error) error {
	if errors.Is(err, errNoToken) {
		return &internal_errors.ErrorWithStatusCode{Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	}
	return &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
}
