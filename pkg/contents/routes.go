package contents

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/covercache"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cache *covercache.Cache) {
	h := &handler{
		contentService: NewService(db),
		cache:          cache,
	}

	e.GET("/contents", h.list)
	e.GET("/contents/:id", h.retrieve)
	e.GET("/contents/:id/pages/:page", h.page)
}
