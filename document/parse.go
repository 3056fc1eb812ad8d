package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrParse matches any *ParseError via errors.Is.
var ErrParse = errors.New("document: parse failed")

// ParseError reports raw content that could not be decoded or parsed.
type ParseError struct {
	Encoding string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document: parse (encoding %q): %v", e.Encoding, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse decodes content using the named text encoding and builds a Document.
// An empty encoding name means UTF-8. Parsing is tolerant: malformed markup
// still produces a tree, the way a browser would repair it.
func Parse(content []byte, encoding string) (*Document, error) {
	name := strings.TrimSpace(encoding)
	if name == "" {
		name = "utf-8"
	}

	enc, _ := charset.Lookup(name)
	if enc == nil {
		return nil, &ParseError{Encoding: name, Err: errors.New("unknown encoding")}
	}

	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return nil, &ParseError{Encoding: name, Err: fmt.Errorf("decode: %w", err)}
	}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, &ParseError{Encoding: name, Err: err}
	}
	if len(gq.Nodes) == 0 {
		return nil, &ParseError{Encoding: name, Err: errors.New("empty tree")}
	}

	return FromHTML(gq.Nodes[0]), nil
}

// FromHTML copies a parsed html tree into a Document arena.
func FromHTML(root *html.Node) *Document {
	d := &Document{nodes: make([]Node, 0, 512)}
	if d.add(root, NoNode) == NoNode {
		d.nodes = append(d.nodes, Node{
			Kind:        DocumentNode,
			Parent:      NoNode,
			FirstChild:  NoNode,
			LastChild:   NoNode,
			PrevSibling: NoNode,
			NextSibling: NoNode,
		})
	}
	return d
}

func (d *Document) add(n *html.Node, parent NodeID) NodeID {
	node := Node{
		Parent:      parent,
		FirstChild:  NoNode,
		LastChild:   NoNode,
		PrevSibling: NoNode,
		NextSibling: NoNode,
	}
	switch n.Type {
	case html.DocumentNode:
		node.Kind = DocumentNode
	case html.ElementNode:
		node.Kind = ElementNode
		node.Tag = n.Data
		if len(n.Attr) > 0 {
			node.Attrs = make([]Attr, len(n.Attr))
			for i, a := range n.Attr {
				node.Attrs[i] = Attr{Key: a.Key, Val: a.Val}
			}
		}
	case html.TextNode:
		node.Kind = TextNode
		node.Text = n.Data
	default:
		return NoNode
	}

	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, node)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cid := d.add(c, id)
		if cid == NoNode {
			continue
		}
		last := d.nodes[id].LastChild
		if last == NoNode {
			d.nodes[id].FirstChild = cid
		} else {
			d.nodes[last].NextSibling = cid
			d.nodes[cid].PrevSibling = last
		}
		d.nodes[id].LastChild = cid
	}
	return id
}
