package scanner

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/binder"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/libraries"
)

type handler struct {
	engine         *Engine
	libraryService *libraries.Service
}

type libraryScanResponse struct {
	LibraryID int      `json:"library_id"`
	Name      string   `json:"name"`
	DryRun    bool     `json:"dry_run"`
	Summary   *Summary `json:"summary"`
}

func (h *handler) bindPayload(c echo.Context) (ScanPayload, error) {
	// The body is optional: an empty POST runs a regular scan.
	binder.AllowEmptyBody(c)
	params := ScanPayload{}
	if err := c.Bind(&params); err != nil {
		return params, errors.WithStack(err)
	}
	return params, nil
}

func (h *handler) scanOne(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	params, err := h.bindPayload(c)
	if err != nil {
		return err
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.engine.Scan(ctx, library, params.options())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, libraryScanResponse{
		LibraryID: library.ID,
		Name:      library.Name,
		DryRun:    params.DryRun,
		Summary:   result.Summary(),
	}))
}

func (h *handler) scanMany(c echo.Context) error {
	ctx := c.Request().Context()

	ids, err := parseIDs(c.QueryParam("id"))
	if err != nil {
		return err
	}

	params, err := h.bindPayload(c)
	if err != nil {
		return err
	}

	libs, err := h.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{IDs: ids})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(ids) > 0 && len(libs) != len(ids) {
		return errcodes.NotFound("Library")
	}

	resp := struct {
		Libraries []libraryScanResponse `json:"libraries"`
	}{make([]libraryScanResponse, 0, len(libs))}

	for _, library := range libs {
		result, err := h.engine.Scan(ctx, library, params.options())
		if err != nil {
			return errors.WithStack(err)
		}
		resp.Libraries = append(resp.Libraries, libraryScanResponse{
			LibraryID: library.ID,
			Name:      library.Name,
			DryRun:    params.DryRun,
			Summary:   result.Summary(),
		})
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// parseIDs reads a comma separated id list such as "1,2". An empty value
// selects every library.
func parseIDs(raw string) ([]int, error) {
	ids := []int{}
	seen := map[int]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, errcodes.ValidationError("id must be a comma separated list of integers")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
