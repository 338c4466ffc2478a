package scanner

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/libraries"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, engine *Engine) {
	h := &handler{
		engine:         engine,
		libraryService: libraries.NewService(db),
	}

	e.POST("/libraries/scan", h.scanMany)
	e.POST("/libraries/:id/scan", h.scanOne)
}
