package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	directoryRepo "lexbook/database/repository/directory"
	"lexbook/services/scheduling"
	"lexbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// ContextKeyCallerID and ContextKeyCallerRole are the gin context keys the
// auth middleware populates for handlers.
const (
	ContextKeyCallerID   = "callerID"
	ContextKeyCallerRole = "callerRole"
)

// JWTAuthMiddleware validates the bearer token, confirms the subject still
// exists in the user directory (redis-cached), and stores the caller
// identity and role on the request context.
func JWTAuthMiddleware(directory directoryRepo.UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		callerID, roleClaim, err := utils.ExtractCallerFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		role, ok := scheduling.ParseRole(roleClaim)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown role"})
			return
		}

		ctx := context.Background()
		cacheKey := utils.RoleCachePrefix + callerID

		cache := utils.GetCacheClient()
		cacheEnabled := cache != nil

		// Cache hit: the directory already vouched for this caller recently.
		if cacheEnabled {
			cachedRole, err := cache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cachedRole == string(role) {
					setCaller(c, callerID, role)
					return
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role mismatch"})
				return
			} else if err != redis.Nil {
				log.Printf("WARNING: role cache lookup failed: %v. Falling back to directory lookup.", err)
			}
		}

		// Cache miss: confirm against the directory.
		usr, err := directory.ResolveUser(ctx, callerID)
		if err != nil || usr == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}
		if usr.Role != string(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role mismatch"})
			return
		}

		if cacheEnabled {
			_ = cache.Set(ctx, cacheKey, usr.Role, utils.RoleCacheTTL).Err()
		}

		setCaller(c, callerID, role)
	}
}

func setCaller(c *gin.Context, id string, role scheduling.Role) {
	c.Set(ContextKeyCallerID, id)
	c.Set(ContextKeyCallerRole, role)
	c.Next()
}

// CallerFromContext rebuilds the scheduling caller from the gin context.
func CallerFromContext(c *gin.Context) (scheduling.Caller, bool) {
	id, ok := c.Get(ContextKeyCallerID)
	if !ok {
		return scheduling.Caller{}, false
	}
	role, ok := c.Get(ContextKeyCallerRole)
	if !ok {
		return scheduling.Caller{}, false
	}
	callerID, ok1 := id.(string)
	callerRole, ok2 := role.(scheduling.Role)
	if !ok1 || !ok2 {
		return scheduling.Caller{}, false
	}
	return scheduling.Caller{ID: callerID, Role: callerRole}, true
}
