package joblogs

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/jobs"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		jobLogService: NewService(db),
		jobService:    jobs.NewService(db),
	}

	e.GET("/jobs/:id/logs", h.list)
}
