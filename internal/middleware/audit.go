package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// Audit appends an audit-trail row for auth-relevant routes (logins, token
// exchange). Failures to write the trail are logged, never surfaced.
func Audit(logs repository.AuditLogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := model.AuditLog{
			SourceIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Path:      c.Request.URL.Path,
			Result:    fmt.Sprintf("status=%d", c.Writer.Status()),
		}
		if err := logs.Append(&entry); err != nil {
			log.Error().Err(err).Str("path", entry.Path).Msg("Failed to append audit log entry")
		}
	}
}
