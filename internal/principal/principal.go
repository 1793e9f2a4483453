// Package principal carries the authenticated actor through a request.
//
// The auth middleware stores the Principal once per request; handlers and
// services read it back with Resolve and pass it explicitly from there on.
// Nothing below the handler layer reads request or session state directly.
package principal

import (
	"github.com/gin-gonic/gin"

	"github.com/data2rest/logscope/internal/models"
)

const contextKey = "principal"

// Set stores p on the request context.
func Set(c *gin.Context, p models.Principal) {
	c.Set(contextKey, p)
}

// Resolve returns the principal stored for this request. A missing or
// anonymous principal yields models.ErrUnauthenticated, never an admin.
func Resolve(c *gin.Context) (models.Principal, error) {
	v, ok := c.Get(contextKey)
	if !ok {
		return models.Principal{}, models.ErrUnauthenticated
	}

	p, ok := v.(models.Principal)
	if !ok || !p.Authenticated() {
		return models.Principal{}, models.ErrUnauthenticated
	}

	return p, nil
}
