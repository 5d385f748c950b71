package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

// userIdMiddleware requires a valid bearer token and stores the operator id
// in the gin context.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userID, err := h.services.ParseToken(strings.TrimSpace(token))
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// pushTokenMiddleware checks the token query parameter the push subscription
// is configured with.
func (h *Handler) pushTokenMiddleware(c *gin.Context) {
	token := c.Query("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.opts.PushToken)) != 1 {
		if h.log != nil {
			h.log.Warnw("pubsub_push_rejected", "remote", c.ClientIP(), "token_present", token != "")
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid push token",
		})
		return
	}
	c.Next()
}
