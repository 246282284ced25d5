package style

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNodeRemoved is returned when a removed style node is used again.
var ErrNodeRemoved = errors.New("style node has been removed")

// Document creates style nodes.
type Document interface {
	CreateStyleNode(id string) (StyleNode, error)
}

// StyleNode is a single style element. Content replaces, never appends.
type StyleNode interface {
	SetContent(css string)
	Content() string
	Remove() error
}

// HTMLDocument is a Document backed by an HTML node tree.
type HTMLDocument struct {
	root *html.Node
}

// NewHTMLDocument parses src into a document. An empty src yields an empty
// page with html, head and body elements.
func NewHTMLDocument(src string) (*HTMLDocument, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &HTMLDocument{root: root}, nil
}

// CreateStyleNode appends a <style id=id> element to the document head.
func (d *HTMLDocument) CreateStyleNode(id string) (StyleNode, error) {
	head := find(d.root, atom.Head)
	if head == nil {
		return nil, errors.New("document has no head element")
	}
	if byID(d.root, id) != nil {
		return nil, fmt.Errorf("element with id %q already exists", id)
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	head.AppendChild(el)
	return &htmlStyleNode{el: el}, nil
}

// Head returns the head element.
func (d *HTMLDocument) Head() *html.Node {
	return find(d.root, atom.Head)
}

// Body returns the body element.
func (d *HTMLDocument) Body() *html.Node {
	return find(d.root, atom.Body)
}

// ElementByID returns the element with the given id attribute.
func (d *HTMLDocument) ElementByID(id string) *html.Node {
	return byID(d.root, id)
}

// SetInnerHTML replaces the children of the element with the given id by the
// parsed fragment.
func (d *HTMLDocument) SetInnerHTML(id, fragment string) error {
	el := byID(d.root, id)
	if el == nil {
		return fmt.Errorf("no element with id %q", id)
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), el)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}

	for c := el.FirstChild; c != nil; c = el.FirstChild {
		el.RemoveChild(c)
	}
	for _, n := range nodes {
		el.AppendChild(n)
	}
	return nil
}

// Render serializes the document.
func (d *HTMLDocument) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the serialized document.
func (d *HTMLDocument) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

type htmlStyleNode struct {
	el *html.Node
}

func (n *htmlStyleNode) SetContent(css string) {
	for c := n.el.FirstChild; c != nil; c = n.el.FirstChild {
		n.el.RemoveChild(c)
	}
	n.el.AppendChild(&html.Node{Type: html.TextNode, Data: css})
}

func (n *htmlStyleNode) Content() string {
	var sb strings.Builder
	for c := n.el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func (n *htmlStyleNode) Remove() error {
	if n.el.Parent == nil {
		return ErrNodeRemoved
	}
	n.el.Parent.RemoveChild(n.el)
	return nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

func byID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := byID(c, id); found != nil {
			return found
		}
	}
	return nil
}
