package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lendora/loan-origination/internal/domain/entity"
)

func performWithRole(role string, allowed ...entity.Role) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe",
		func(c *gin.Context) {
			if role != "" {
				c.Set(CtxUserRoleKey, role)
			}
		},
		RequireRoles(allowed...),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRoles(t *testing.T) {
	// Allowed role passes through.
	w := performWithRole("BANKER", entity.RoleBanker)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Role outside the allow-list is rejected, not just unauthenticated.
	w = performWithRole("CUSTOMER", entity.RoleBanker)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Multiple allowed roles.
	w = performWithRole("MERCHANT", entity.RoleCustomer, entity.RoleMerchant)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Empty allow-list admits any authenticated principal.
	w = performWithRole("CUSTOMER")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// No role in context means the auth layer never ran.
	w = performWithRole("", entity.RoleBanker)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
