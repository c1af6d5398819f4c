package controllers

import (
	"net/http"

	"github.com/bookfairhq/pos-backend/api/responses"
	"github.com/bookfairhq/pos-backend/pkg/logger"
)

// CacheInvalidator drops all cached catalog data so the next read hits the
// backing spreadsheet.
type CacheInvalidator interface {
	InvalidateCaches()
}

type RefreshController struct {
	catalog CacheInvalidator
	log     *logger.Logger
}

func NewRefreshController(catalog CacheInvalidator, logg *logger.Logger) *RefreshController {
	return &RefreshController{catalog: catalog, log: logg}
}

func (c *RefreshController) Handle(w http.ResponseWriter, r *http.Request) {
	c.catalog.InvalidateCaches()
	if c.log != nil {
		c.log.Info(r.Context(), "catalog.caches_invalidated")
	}
	responses.WriteSuccess(w, map[string]string{"status": "refreshed"})
}
