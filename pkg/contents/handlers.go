package contents

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/covercache"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/models"
)

type handler struct {
	contentService *Service
	cache          *covercache.Cache
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	content, err := h.contentService.RetrieveContent(ctx, RetrieveContentOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, content))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListContentsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	contents, total, err := h.contentService.ListContentsWithTotal(ctx, ListContentsOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
		ParentID:  params.ParentID,
		Root:      params.Root && params.ParentID == nil,
		Types:     params.Type,
		Valid:     params.Valid,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Contents []*models.Content `json:"contents"`
		Total    int               `json:"total"`
	}{contents, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) page(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	pageNum, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return errcodes.NotFound("Page")
	}

	content, err := h.contentService.RetrieveContent(ctx, RetrieveContentOptions{
		ID:    &id,
		Types: []string{models.ContentTypeComic},
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if content.Meta == nil || content.Meta.Comic == nil || pageNum < 0 || pageNum >= len(content.Meta.Comic.Pages) {
		return errcodes.NotFound("Page")
	}

	p, mimeType, err := h.cache.Page(content, pageNum)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(echo.HeaderContentType, mimeType)
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return errors.WithStack(c.File(p))
}
