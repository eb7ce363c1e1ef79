package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/pkg/response"
)

// RequireRoles is the per-route authorization table: a static allow-list
// evaluated before any domain logic runs. An empty list admits any
// authenticated principal. Must run after Auth.
func RequireRoles(allowed ...entity.Role) gin.HandlerFunc {
	allowSet := make(map[entity.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := entity.Role(c.GetString(CtxUserRoleKey))
		if role == "" {
			abortUnauthenticated(c)
			return
		}
		if len(allowSet) > 0 {
			if _, ok := allowSet[role]; !ok {
				response.AbortError(c, http.StatusForbidden, "you do not have access to this resource", nil)
				return
			}
		}
		c.Next()
	}
}
