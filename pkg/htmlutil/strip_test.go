package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text no tags", "Hello world", "Hello world"},
		{"simple paragraph", "<p>Hello world</p>", "Hello world"},
		{"multiple paragraphs", "<p>First paragraph</p><p>Second paragraph</p>", "First paragraph\nSecond paragraph"},
		{"nested tags", "<p><strong>Bold</strong> and <em>italic</em></p>", "Bold and italic"},
		{"br tags", "Line one<br>Line two<br/>Line three<br />Line four", "Line one\nLine two\nLine three\nLine four"},
		{"tags with attributes", `<p style="font-weight: 600">Styled text</p>`, "Styled text"},
		{"named entities", "Tom &amp; Jerry &mdash; the classic", "Tom & Jerry — the classic"},
		{"numeric entities", "&#60;tag&#62; &#8220;quoted&#8221;", "<tag> “quoted”"},
		{"nbsp entity", "Hello&nbsp;world", "Hello world"},
		{"multiple spaces collapsed", "Too    many    spaces", "Too many spaces"},
		{"list items", "<ul><li>Item one</li><li>Item two</li></ul>", "Item one\nItem two"},
		{"headings", "<h1>Title</h1><p>Content</p>", "Title\nContent"},
		{"self-closing tags", "Text <img src='test.jpg'/> more text", "Text more text"},
		{"script and style dropped", "<style>p{}</style><p>Body</p><script>alert(1)</script>", "Body"},
		{"escaped markup in calibre descriptions", "&lt;p&gt;kept as text&lt;/p&gt;", "<p>kept as text</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}
