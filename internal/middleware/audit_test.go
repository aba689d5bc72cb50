package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAuditLogs struct {
	entries []model.AuditLog
}

func (r *recordingAuditLogs) Append(entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingAuditLogs) FindAll() ([]model.AuditLog, error) {
	return r.entries, nil
}

func TestAuditRecordsUnauthenticatedLoginAttempt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &recordingAuditLogs{}

	r := gin.New()
	// Login routes carry the audit middleware without JWTAuth in front.
	r.POST("/api/v1/auth/login", Audit(logs), func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("User-Agent", "test-agent")
	r.ServeHTTP(w, req)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, "/api/v1/auth/login", entry.Path)
	assert.Equal(t, "status=401", entry.Result)
	assert.Equal(t, "test-agent", entry.UserAgent)
}

func TestAuditRecordsOutcomePerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &recordingAuditLogs{}

	r := gin.New()
	r.POST("/api/v1/auth/login", Audit(logs), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": "issued"})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	}

	require.Len(t, logs.entries, 2)
	assert.Equal(t, "status=200", logs.entries[0].Result)
}
