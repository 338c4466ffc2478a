package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanParams struct {
	Name        string   `json:"name" mod:"trim" validate:"max=9"`
	Force       bool     `json:"force"`
	FilterPaths []string `json:"filter_paths,omitempty" validate:"omitempty,max=2,dive,required"`
	Internal    string   `json:"-"`
}

type listParams struct {
	Limit  int      `query:"limit" json:"limit" default:"20" validate:"min=1,max=100"`
	Offset int      `query:"offset" json:"offset" validate:"min=0"`
	Types  []string `query:"type" json:"type,omitempty" validate:"dive,oneof=comic book"`
}

func newContext(method, target, payload, mime string) echo.Context {
	e := echo.New()
	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(payload))
	}
	if mime != "" {
		req.Header.Set(echo.HeaderContentType, mime)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func newJSONContext(payload string) echo.Context {
	return newContext(http.MethodPost, "/", payload, echo.MIMEApplicationJSON)
}

func TestBind_JSON(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("trims and decodes", func(t *testing.T) {
		p := scanParams{}
		require.NoError(t, b.Bind(&p, newJSONContext(`{"name":" comics ","force":true,"filter_paths":["/a"]}`)))
		assert.Equal(t, "comics", p.Name)
		assert.True(t, p.Force)
		assert.Equal(t, []string{"/a"}, p.FilterPaths)
	})

	t.Run("only accepts json bodies", func(t *testing.T) {
		err := b.Bind(&scanParams{}, newContext(http.MethodPost, "/", `name=x`, echo.MIMEApplicationForm))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unsupported Media Type")
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		err := b.Bind(&scanParams{}, newJSONContext(`{"name":"x","dry":true}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `Unknown Parameter "dry"`)
	})

	t.Run("reports type errors", func(t *testing.T) {
		err := b.Bind(&scanParams{}, newJSONContext(`{"force":"yes"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"force" should be of type bool`)
	})

	t.Run("reports malformed payloads", func(t *testing.T) {
		err := b.Bind(&scanParams{}, newJSONContext(`{"name":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Malformed Payload")
	})

	t.Run("validates", func(t *testing.T) {
		err := b.Bind(&scanParams{}, newJSONContext(`{"name":"0123456789"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"name" length must be less than or equal to 9 characters`)

		err = b.Bind(&scanParams{}, newJSONContext(`{"filter_paths":["/a",""]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"filter_paths[1]" is required`)
	})
}

func TestBind_EmptyBody(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	err = b.Bind(&scanParams{}, newContext(http.MethodPost, "/", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request body can't be empty.")

	c := newContext(http.MethodPost, "/", "", "")
	AllowEmptyBody(c)
	p := scanParams{}
	require.NoError(t, b.Bind(&p, c))
	assert.False(t, p.Force)
}

func TestBind_Query(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	p := listParams{}
	require.NoError(t, b.Bind(&p, newContext(http.MethodGet, "/?offset=5&type=comic&type=book", "", "")))
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 5, p.Offset)
	assert.Equal(t, []string{"comic", "book"}, p.Types)

	err = b.Bind(&listParams{}, newContext(http.MethodGet, "/?limit=abc", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"limit" should be of type int`)

	err = b.Bind(&listParams{}, newContext(http.MethodGet, "/?page=2", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unknown Parameter "page"`)

	err = b.Bind(&listParams{}, newContext(http.MethodGet, "/?type=audiobook", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"type[0]" must be one of the following: "comic", "book"`)
}
