package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/auth"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/model"
)

// Capability is a coarse permission checked per route. Roles map to
// capabilities here instead of matching path patterns, so the permission
// model is independent of transport-level routing.
type Capability string

const (
	CapManageUsers     Capability = "manage_users"
	CapManagePanels    Capability = "manage_panels"
	CapViewPanels      Capability = "view_panels"
	CapSubmitQuestions Capability = "submit_questions"
	CapTagQuestions    Capability = "tag_questions"
	CapVote            Capability = "vote"
	CapViewMetrics     Capability = "view_all_metrics"
	CapViewOwnData     Capability = "view_own_data"
)

var roleCapabilities = map[string][]Capability{
	model.RoleAdmin: {
		CapManageUsers, CapManagePanels, CapViewPanels, CapViewMetrics, CapViewOwnData,
	},
	model.RoleStudent: {
		CapViewPanels, CapSubmitQuestions, CapTagQuestions, CapVote, CapViewOwnData,
	},
	model.RolePanelist: {
		CapViewPanels, CapViewOwnData,
	},
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// JWTAuth verifies the Bearer token and stores the principal in the context.
func JWTAuth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid authorization header format"})
			return
		}

		claims, err := manager.Verify(parts[1])
		if err != nil {
			msg := "Invalid token"
			if err == auth.ErrExpiredToken {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: msg})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks the capability.
func RequireCapability(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if !HasCapability(role, cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "Role lacks permission for this action"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the principal id from the context.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetEmail extracts the caller's email from the context.
func GetEmail(c *gin.Context) string {
	if v, ok := c.Get(ContextEmail); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRole extracts the caller's role from the context.
func GetRole(c *gin.Context) string {
	if v, ok := c.Get(ContextRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
