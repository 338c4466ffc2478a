package cbz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltisapp/voltis/internal/testgen"
)

func pageNames(t *testing.T, p string) []string {
	t.Helper()
	pages, err := ListPages(p)
	require.NoError(t, err)
	names := make([]string, 0, len(pages))
	for _, page := range pages {
		names = append(names, page.Name)
	}
	return names
}

func TestIsImage(t *testing.T) {
	t.Parallel()
	assert.True(t, IsImage("001.jpg"))
	assert.True(t, IsImage("dir/PAGE.PNG"))
	assert.True(t, IsImage("a.webp"))
	assert.True(t, IsImage("a.jpeg"))
	assert.True(t, IsImage("a.gif"))
	assert.False(t, IsImage("ComicInfo.xml"))
	assert.False(t, IsImage("noext"))
}

func TestListPages_NaturalOrder(t *testing.T) {
	t.Parallel()
	p := testgen.GenerateCBZ(t, t.TempDir(), "issue.cbz", testgen.CBZOptions{
		PageNames: []string{"page10.png", "page2.png", "Page1.png"},
	})

	assert.Equal(t, []string{"Page1.png", "page2.png", "page10.png"}, pageNames(t, p))
}

func TestListPages_Dimensions(t *testing.T) {
	t.Parallel()
	p := testgen.GenerateCBZ(t, t.TempDir(), "issue.cbz", testgen.CBZOptions{
		PageCount:   2,
		ImageFormat: "jpeg",
		Width:       320,
		Height:      480,
	})

	pages, err := ListPages(p)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "001.jpg", pages[0].Name)
	assert.Equal(t, 320, pages[0].Width)
	assert.Equal(t, 480, pages[0].Height)
	assert.Equal(t, "image/jpeg", pages[0].MimeType)
}

func TestListPages_GIF(t *testing.T) {
	t.Parallel()
	p := testgen.GenerateCBZ(t, t.TempDir(), "issue.cbz", testgen.CBZOptions{
		PageCount:   1,
		ImageFormat: "gif",
		Width:       10,
		Height:      20,
	})

	pages, err := ListPages(p)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 10, pages[0].Width)
	assert.Equal(t, 20, pages[0].Height)
	assert.Equal(t, "image/gif", pages[0].MimeType)
}

func TestListPages_SkipsNonImagesAndBrokenPages(t *testing.T) {
	t.Parallel()
	p := testgen.GenerateCBZ(t, t.TempDir(), "issue.cbz", testgen.CBZOptions{
		PageCount: 2,
		Extra: map[string][]byte{
			"ComicInfo.xml": []byte("<ComicInfo/>"),
			"003.png":       []byte("not really a png"),
		},
	})

	assert.Equal(t, []string{"001.png", "002.png"}, pageNames(t, p))
}

func TestListPages_NoPages(t *testing.T) {
	t.Parallel()
	p := testgen.GenerateCBZ(t, t.TempDir(), "empty.cbz", testgen.CBZOptions{
		PageNames: []string{},
		Extra:     map[string][]byte{"readme.txt": []byte("hello")},
	})

	pages, err := ListPages(p)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestListPages_CorruptArchive(t *testing.T) {
	t.Parallel()
	p := testgen.WriteFile(t, t.TempDir(), "broken.cbz", []byte("this is not a zip"))

	_, err := ListPages(p)
	assert.Error(t, err)
}
