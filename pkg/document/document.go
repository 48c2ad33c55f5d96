// Package document models the structured rich-text document produced by the editor
// (ProseMirror / TipTap JSON) and derives its plain-text projection.
package document

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Node types the projection treats specially.
const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"
)

// MaxDepth bounds nesting accepted by Parse.
const MaxDepth = 128

var (
	ErrEmpty       = errors.New("document is empty")
	ErrRootType    = errors.New("document root must be of type doc")
	ErrMissingType = errors.New("document node without type")
	ErrTextNode    = errors.New("text node must not have children")
	ErrTooDeep     = errors.New("document nesting too deep")
)

// Mark is an inline annotation such as bold or link.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one element of the document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Empty returns a document holding a single empty paragraph, which is what the editor
// produces for a blank note.
func Empty() *Node {
	return &Node{
		Type:    TypeDoc,
		Content: []*Node{{Type: TypeParagraph}},
	}
}

// FromText builds a document with one paragraph per line.
func FromText(s string) *Node {
	doc := &Node{Type: TypeDoc}
	for _, line := range strings.Split(s, "\n") {
		p := &Node{Type: TypeParagraph}
		if line != "" {
			p.Content = []*Node{{Type: TypeText, Text: line}}
		}
		doc.Content = append(doc.Content, p)
	}
	return doc
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Node, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmpty
	}
	var n Node
	if err := sonic.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Validate checks the structural rules every stored document must satisfy.
func (n *Node) Validate() error {
	if n == nil {
		return ErrEmpty
	}
	if n.Type != TypeDoc {
		return ErrRootType
	}
	return validate(n, 1)
}

func validate(n *Node, depth int) error {
	if depth > MaxDepth {
		return ErrTooDeep
	}
	if n.Type == "" {
		return ErrMissingType
	}
	if n.Type == TypeText && len(n.Content) > 0 {
		return ErrTextNode
	}
	for _, c := range n.Content {
		if c == nil {
			return ErrMissingType
		}
		if err := validate(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the document as JSON.
func (n *Node) Marshal() ([]byte, error) {
	return sonic.Marshal(n)
}

// Equal reports whether two documents encode to the same JSON, attribute keys sorted.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, err := sonic.ConfigStd.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := sonic.ConfigStd.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}

// String returns the JSON form, or an empty string if encoding fails.
func (n *Node) String() string {
	b, err := n.Marshal()
	if err != nil {
		return ""
	}
	return string(b)
}

// PlainText projects the document onto plain text. Leaf text is concatenated inside
// textblocks, hard breaks become newlines and sibling blocks are joined by a newline.
// The result depends only on the tree, so equal documents always project equally.
func PlainText(n *Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n *Node) {
	switch {
	case n.Type == TypeText:
		b.WriteString(n.Text)
		return
	case n.Type == TypeHardBreak:
		b.WriteByte('\n')
		return
	case len(n.Content) == 0:
		return
	}

	if isTextblock(n) {
		for _, c := range n.Content {
			write(b, c)
		}
		return
	}

	for i, c := range n.Content {
		if i > 0 {
			b.WriteByte('\n')
		}
		write(b, c)
	}
}

// isTextblock reports whether every child is inline content.
func isTextblock(n *Node) bool {
	for _, c := range n.Content {
		if !isInline(c) {
			return false
		}
	}
	return true
}

func isInline(n *Node) bool {
	switch n.Type {
	case TypeText, TypeHardBreak, "mention", "emoji", "image", "inlineMath":
		return true
	}
	return false
}
