package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "hello", "<p>hello</p>\n"},
		{"emphasis", "**bold** _it_", "<p><strong>bold</strong> <em>it</em></p>\n"},
		{"strikethrough", "~~gone~~", "<p><del>gone</del></p>\n"},
		{"raw html dropped", "<script>x</script>", "<!-- raw HTML omitted -->\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Markdown(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdownTaskList(t *testing.T) {
	got := MustMarkdown("- [x] done\n- [ ] todo")
	assert.Contains(t, got, `<input checked="" disabled="" type="checkbox"`)
	assert.Contains(t, got, "todo")
}
