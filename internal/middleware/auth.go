package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Context keys set by the auth middleware.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxUserRole = "userRole"
	CtxMatrix   = "permMatrix"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractClaims parses the JWT from cookie or Authorization header and
// returns its claims, or writes the 401 and returns false.
func extractClaims(c *gin.Context) (jwt.MapClaims, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil, false
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) (role string, ok bool) {
	role, ok = claims["role"].(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return "", false
	}
	c.Set(CtxUserID, claims["sub"])
	if username, has := claims["username"].(string); has {
		c.Set(CtxUsername, username)
	}
	c.Set(CtxUserRole, role)
	return role, true
}

// RequireAuth validates the JWT and attaches the caller's identity and
// resolved permission matrix to the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}
		role, ok := setIdentity(c, claims)
		if !ok {
			return
		}
		c.Set(CtxMatrix, matrixForRole(role))
		c.Next()
	}
}

// RequirePermission validates the JWT, rebuilds the caller's permission
// matrix from the role's stored grants, and rejects the request unless the
// matrix grants the action on the module. Every mutating route carries this
// check; client-side gating alone is never trusted.
func RequirePermission(module permission.Module, action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}
		role, ok := setIdentity(c, claims)
		if !ok {
			return
		}

		matrix := matrixForRole(role)
		c.Set(CtxMatrix, matrix)

		if !permission.Can(matrix, module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}

// Matrix returns the permission matrix the auth middleware attached to the
// request, or nil when the route is unauthenticated.
func Matrix(c *gin.Context) permission.Matrix {
	if v, ok := c.Get(CtxMatrix); ok {
		if m, ok := v.(permission.Matrix); ok {
			return m
		}
	}
	return nil
}

// Username returns the acting username, falling back to "System" for
// tokens minted before the username claim existed.
func Username(c *gin.Context) string {
	if v, ok := c.Get(CtxUsername); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "System"
}

// --- Role grant resolution ---

// grantCacheEntry stores cached grants for a role with TTL
type grantCacheEntry struct {
	grants    permission.Grants
	expiresAt time.Time
}

var (
	grantCache    sync.Map // roleName -> grantCacheEntry
	grantCacheTTL = 5 * time.Minute
)

// grantDB holds the database reference for grant queries — set via InitPermissionMiddleware
var grantDB *gorm.DB

// InitPermissionMiddleware sets the DB reference for RequirePermission middleware
func InitPermissionMiddleware(db *gorm.DB) {
	grantDB = db
}

// matrixForRole builds the server-side permission matrix for a role name.
// Admin names resolve without touching the database; any lookup failure
// degrades to an empty grant set, which the matrix resolves to all-false.
func matrixForRole(roleName string) permission.Matrix {
	grants, err := getGrantsForRole(roleName)
	if err != nil {
		grants = nil
	}
	return permission.BuildMatrix(roleName, grants)
}

// getGrantsForRole returns cached or DB-fetched permission grants for a role name
func getGrantsForRole(roleName string) (permission.Grants, error) {
	if entry, ok := grantCache.Load(roleName); ok {
		cached := entry.(grantCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.grants, nil
		}
	}

	if grantDB == nil {
		return nil, fmt.Errorf("permission middleware not initialized")
	}

	var role model.Role
	err := grantDB.
		Where("role_name = ? AND status = ? AND is_deleted = ?", roleName, model.RoleActive, false).
		First(&role).Error
	if err != nil {
		return nil, err
	}

	var grants permission.Grants
	if role.Permissions != "" {
		if unmarshalErr := json.Unmarshal([]byte(role.Permissions), &grants); unmarshalErr != nil {
			// Malformed grants never grant anything.
			grants = nil
		}
	}

	grantCache.Store(roleName, grantCacheEntry{
		grants:    grants,
		expiresAt: time.Now().Add(grantCacheTTL),
	})

	return grants, nil
}

// GetGrantsForRoleFromDB exposes grant fetching for handlers (e.g., /me endpoint)
func GetGrantsForRoleFromDB(roleName string) (permission.Grants, error) {
	return getGrantsForRole(roleName)
}

// ClearPermissionCache removes cached grants for a specific role (or all roles if empty)
func ClearPermissionCache(roleName string) {
	if roleName == "" {
		grantCache.Range(func(key, _ interface{}) bool {
			grantCache.Delete(key)
			return true
		})
	} else {
		grantCache.Delete(roleName)
	}
}
