package filesystem

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/scanner"
)

type handler struct {
	filesystemService *Service
	engine            *scanner.Engine
}

func (h *handler) browse(c echo.Context) error {
	params := BrowseQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := BrowseOptions{
		Path:       params.Path,
		ShowHidden: params.ShowHidden,
		Limit:      params.Limit,
		Offset:     params.Offset,
		Search:     params.Search,
	}
	if params.LibraryType != "" {
		plugin, err := h.engine.PluginFor(&models.Library{Type: params.LibraryType})
		if err != nil {
			return errcodes.ValidationError(err.Error())
		}
		opts.Eligible = func(path string) bool {
			return plugin.CheckFileEligible(scanner.LibraryFile{URI: filepath.ToSlash(path)})
		}
	}

	resp, err := h.filesystemService.Browse(opts)
	if err != nil {
		if os.IsNotExist(err) {
			return errcodes.NotFound("Directory")
		}
		if os.IsPermission(err) {
			return errcodes.Forbidden("Access denied to this directory")
		}
		if errors.Is(err, os.ErrInvalid) {
			return errcodes.ValidationError("path must be a directory")
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
