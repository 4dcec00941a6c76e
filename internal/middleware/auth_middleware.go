package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	UserRoleKey    = "user_role"
	TokenIDKey     = "token_id"
	TokenExpiryKey = "token_expires_at"
)

var (
	ErrUnauthenticated = stderrors.New("unauthenticated")
	ErrForbidden       = stderrors.New("forbidden")
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uint
	Email  string
	Role   model.UserRole
}

// Authorize is the single capability check: it fails with ErrUnauthenticated
// when there is no identity and ErrForbidden when its role is not allowed.
func Authorize(identity *Identity, allowed ...model.UserRole) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	for _, r := range allowed {
		if identity.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RevocationChecker reports whether a token id was revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations RevocationChecker
}

// NewAuthMiddleware builds the middleware. revocations may be nil, in which
// case tokens are only checked for signature and expiry.
func NewAuthMiddleware(jwtSecret string, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

type authFailure struct {
	code    string
	message string
	err     error
}

// verify resolves the bearer token on the request. A nil failure with a nil
// claims value means no Authorization header was sent.
func (m *AuthMiddleware) verify(c *gin.Context) (*util.Claims, *authFailure) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}

	token, ok := bearerToken(header)
	if !ok {
		return nil, &authFailure{errors.AuthTokenInvalid, "Invalid authorization header format", ErrUnauthenticated}
	}

	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		if stderrors.Is(err, util.ErrExpiredToken) {
			return nil, &authFailure{errors.AuthTokenExpired, "Token has expired", err}
		}
		return nil, &authFailure{errors.AuthTokenInvalid, "Invalid token", err}
	}

	if _, ok := model.ParseRole(claims.Role); !ok {
		return nil, &authFailure{errors.AuthTokenInvalid, "Invalid token", ErrUnauthenticated}
	}

	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			return nil, &authFailure{errors.InternalServerError, errors.GenericServerMessage, err}
		}
		if revoked {
			return nil, &authFailure{errors.AuthTokenRevoked, "Token has been revoked", ErrUnauthenticated}
		}
	}

	return claims, nil
}

func setIdentity(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(TokenIDKey, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(TokenExpiryKey, claims.ExpiresAt.Time)
	}
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, failure := m.verify(c)
		if failure == nil && claims == nil {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if failure != nil {
			if failure.code == errors.InternalServerError {
				log.Error("Token revocation lookup failed", failure.err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.InternalError(c)
				c.Abort()
				return
			}
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": failure.err.Error(),
			})
			errors.RespondWithError(c, http.StatusUnauthorized, failure.code, failure.message)
			c.Abort()
			return
		}

		setIdentity(c, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate attaches the identity when a valid token is present
// and otherwise continues as an anonymous request.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		claims, failure := m.verify(c)
		if failure != nil {
			log.Debug("Token rejected - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": failure.err.Error(),
			})
			c.Next()
			return
		}
		if claims == nil {
			c.Next()
			return
		}

		setIdentity(c, claims)

		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// RequireRole admits only identities holding one of roles. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, _ := GetIdentity(c)
		switch err := Authorize(identity, roles...); {
		case err == nil:
			c.Next()
		case stderrors.Is(err, ErrUnauthenticated):
			log.Warn("Role check without identity", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
		default:
			log.Warn("Insufficient permissions", map[string]interface{}{
				"user_id":        identity.UserID,
				"user_role":      identity.Role,
				"required_roles": roles,
				"path":           c.Request.URL.Path,
			})
			errors.Forbidden(c, "")
			c.Abort()
		}
	}
}

// GetIdentity returns the identity attached by Authenticate or
// OptionalAuthenticate.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return nil, false
	}
	role, _ := GetUserRole(c)
	email, _ := GetUserEmail(c)
	return &Identity{UserID: userID, Email: email, Role: role}, true
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	v, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(model.UserRole)
	return role, ok
}

// GetTokenID returns the jti of the token that authenticated the request and
// its expiry.
func GetTokenID(c *gin.Context) (string, time.Time, bool) {
	id := c.GetString(TokenIDKey)
	if id == "" {
		return "", time.Time{}, false
	}
	return id, c.GetTime(TokenExpiryKey), true
}
