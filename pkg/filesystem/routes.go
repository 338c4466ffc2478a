package filesystem

import (
	"github.com/labstack/echo/v4"
	"github.com/voltisapp/voltis/pkg/scanner"
)

func RegisterRoutes(e *echo.Echo, engine *scanner.Engine) {
	h := &handler{
		filesystemService: NewService(),
		engine:            engine,
	}

	e.GET("/filesystem/browse", h.browse)
}
