package handlers

import (
	"net/http"
	"strings"

	"homeserve/services/catalog"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes the read-only service catalogue.
type CatalogHandler struct {
	Catalog catalog.Catalog
}

func NewCatalogHandler(c catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: c}
}

// ListServices handles GET /api/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// GetServicePrice handles GET /api/services/price?serviceType=.
func (h *CatalogHandler) GetServicePrice(c *gin.Context) {
	serviceType := strings.TrimSpace(c.Query("serviceType"))
	if serviceType == "" {
		utils.RespondError(c, utils.ValidationError("serviceType is required"))
		return
	}
	price, err := h.Catalog.PriceFor(c.Request.Context(), serviceType)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"serviceType": serviceType, "price": price})
}
