package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/config"
	"github.com/panelmgmt/pms-core/internal/auth"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, HasCapability(model.RoleAdmin, CapManagePanels))
	assert.True(t, HasCapability(model.RoleAdmin, CapManageUsers))
	assert.False(t, HasCapability(model.RoleAdmin, CapVote), "admins administer, they do not vote")

	assert.True(t, HasCapability(model.RoleStudent, CapSubmitQuestions))
	assert.True(t, HasCapability(model.RoleStudent, CapTagQuestions))
	assert.True(t, HasCapability(model.RoleStudent, CapVote))
	assert.False(t, HasCapability(model.RoleStudent, CapManagePanels))

	assert.True(t, HasCapability(model.RolePanelist, CapViewPanels))
	assert.False(t, HasCapability(model.RolePanelist, CapVote))
	assert.False(t, HasCapability("", CapViewPanels))
}

func authTestRouter(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := auth.NewManager(&config.Config{JWT: config.JWT{
		Secret:         "test-secret",
		Issuer:         "test-pms-core",
		Audience:       "test-pms-core",
		ExpirationDays: 1,
	}})

	r := gin.New()
	r.GET("/protected",
		JWTAuth(manager),
		RequireCapability(CapManagePanels),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user": GetUserID(c), "role": GetRole(c)})
		})
	return r, manager
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	r, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	r, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsInvalidToken(t *testing.T) {
	r, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapabilityForbidsWrongRole(t *testing.T) {
	r, manager := authTestRouter(t)

	token, err := manager.Issue("user-1", "alice@tamu.edu", "Alice", "", model.RoleStudent)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilityAdmitsAdmin(t *testing.T) {
	r, manager := authTestRouter(t)

	token, err := manager.Issue("admin-1", "admin@tamu.edu", "Admin", "", model.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin-1")
	assert.Contains(t, w.Body.String(), model.RoleAdmin)
}
