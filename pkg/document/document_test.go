package document

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *Node { return &Node{Type: TypeText, Text: s} }

func para(children ...*Node) *Node { return &Node{Type: TypeParagraph, Content: children} }

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		doc  *Node
		want string
	}{
		{name: "nil", doc: nil, want: ""},
		{name: "empty doc", doc: Empty(), want: ""},
		{name: "doc without children", doc: &Node{Type: TypeDoc}, want: ""},
		{name: "single paragraph", doc: &Node{Type: TypeDoc, Content: []*Node{para(text("Hello world"))}}, want: "Hello world"},
		{
			name: "marks split text nodes",
			doc: &Node{Type: TypeDoc, Content: []*Node{para(
				text("Hello "),
				&Node{Type: TypeText, Text: "world", Marks: []Mark{{Type: "bold"}}},
			)}},
			want: "Hello world",
		},
		{
			name: "blocks become lines",
			doc: &Node{Type: TypeDoc, Content: []*Node{
				{Type: "heading", Attrs: map[string]any{"level": 1}, Content: []*Node{text("Title")}},
				para(text("first")),
				para(text("second")),
			}},
			want: "Title\nfirst\nsecond",
		},
		{
			name: "hard break",
			doc:  &Node{Type: TypeDoc, Content: []*Node{para(text("a"), &Node{Type: TypeHardBreak}, text("b"))}},
			want: "a\nb",
		},
		{
			name: "nested list",
			doc: &Node{Type: TypeDoc, Content: []*Node{
				{Type: "bulletList", Content: []*Node{
					{Type: "listItem", Content: []*Node{para(text("one"))}},
					{Type: "listItem", Content: []*Node{
						para(text("two")),
						{Type: "orderedList", Content: []*Node{
							{Type: "listItem", Content: []*Node{para(text("two.a"))}},
						}},
					}},
				}},
			}},
			want: "one\ntwo\ntwo.a",
		},
		{
			name: "empty paragraph keeps its separator",
			doc:  &Node{Type: TypeDoc, Content: []*Node{para(text("a")), para(), para(text("b"))}},
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.doc))
		})
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello world"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", PlainText(doc))

	_, err = Parse([]byte(``))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse([]byte(`{"type":"paragraph"}`))
	assert.ErrorIs(t, err, ErrRootType)

	_, err = Parse([]byte(`{"type":"doc","content":[{"content":[]}]}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = Parse([]byte(`{"type":"doc","content":[{"type":"text","text":"x","content":[{"type":"text"}]}]}`))
	assert.ErrorIs(t, err, ErrTextNode)

	_, err = Parse([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestParse_TooDeep(t *testing.T) {
	root := &Node{Type: TypeDoc}
	cur := root
	for i := 0; i < MaxDepth+1; i++ {
		child := &Node{Type: "blockquote"}
		cur.Content = []*Node{child}
		cur = child
	}
	assert.ErrorIs(t, root.Validate(), ErrTooDeep)
}

func TestFromText(t *testing.T) {
	assert.Equal(t, Empty(), FromText(""))
	assert.Equal(t, "line 1\nline 2", PlainText(FromText("line 1\nline 2")))
}

// The projection of a document of plain paragraphs is the paragraph texts joined by
// newlines, and survives a JSON round trip unchanged.
func TestPlainText_ParagraphProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	lineGen := gen.AlphaString().Map(func(s string) string {
		return strings.ReplaceAll(s, "\n", "")
	})

	properties.Property("paragraph texts joined by newline", prop.ForAll(
		func(lines []string) bool {
			if len(lines) == 0 {
				return true
			}
			doc := &Node{Type: TypeDoc}
			for _, l := range lines {
				p := para()
				if l != "" {
					p.Content = []*Node{text(l)}
				}
				doc.Content = append(doc.Content, p)
			}
			want := strings.Join(lines, "\n")
			if PlainText(doc) != want {
				return false
			}

			raw, err := doc.Marshal()
			if err != nil {
				return false
			}
			back, err := Parse(raw)
			if err != nil {
				return false
			}
			return PlainText(back) == want
		},
		gen.SliceOf(lineGen),
	))

	properties.TestingRun(t)
}

func TestEqual(t *testing.T) {
	parsed, err := Parse([]byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":2,"id":"h"},"content":[{"type":"text","text":"Plan"}]}]}`))
	require.NoError(t, err)
	built := &Node{Type: TypeDoc, Content: []*Node{{
		Type:    "heading",
		Attrs:   map[string]any{"id": "h", "level": 2},
		Content: []*Node{text("Plan")},
	}}}

	assert.True(t, Equal(parsed, built))
	assert.True(t, Equal(FromText("a\nb"), FromText("a\nb")))
	assert.False(t, Equal(FromText("a"), FromText("b")))
	assert.False(t, Equal(FromText("a"), nil))
	assert.True(t, Equal(nil, nil))
}
