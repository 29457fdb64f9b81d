package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/libreria/internal/catalog"
)

// CatalogLister produces the public book listing.
type CatalogLister interface {
	List(genero, minRaw, maxRaw string) (*catalog.Result, error)
}

// CatalogController serves the public, filterable catalog listing.
type CatalogController struct {
	service CatalogLister
}

// NewCatalogController creates a new catalog controller.
func NewCatalogController(service CatalogLister) *CatalogController {
	return &CatalogController{service: service}
}

// ListBooks returns the filtered catalog with related records loaded and the
// raw filter strings echoed back. Malformed price bounds are ignored, not
// rejected.
// GET /libros?genero=&min=&max=
func (cc *CatalogController) ListBooks(c *gin.Context) {
	result, err := cc.service.List(
		c.Query("genero"),
		c.Query("min"),
		c.Query("max"),
	)
	if err != nil {
		respondInternalError(c, err, "list catalog")
		return
	}
	c.JSON(http.StatusOK, result)
}
