// Package document holds a parsed markup page as a flat, read-only node table.
//
// Nodes reference each other by NodeID index instead of pointers, so a
// Document can be shared between goroutines and walked without cycles.
package document

// NodeID indexes a node inside a Document. NoNode marks an absent link.
type NodeID int32

const NoNode NodeID = -1

// NodeKind distinguishes the node types that are retained from the parse.
// Comments and doctypes are dropped.
type NodeKind uint8

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
)

// Attr is a single markup attribute. Order follows the source.
type Attr struct {
	Key string
	Val string
}

// Node is one entry of the arena.
type Node struct {
	Kind NodeKind
	// Tag is the lower-cased element name; empty for text and document nodes.
	Tag   string
	Attrs []Attr
	// Text is the character data of a text node.
	Text string

	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	PrevSibling NodeID
	NextSibling NodeID
}

// Document is an immutable tree of nodes. The root is always node 0.
type Document struct {
	nodes []Node
}

// Predicate reports whether a node matches.
type Predicate func(d *Document, id NodeID) bool

// Len returns the number of nodes in the arena.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Root returns the document node.
func (d *Document) Root() NodeID {
	if len(d.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Node returns a copy of the node with the given id.
func (d *Document) Node(id NodeID) Node {
	return d.nodes[id]
}

func (d *Document) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

// IsElement reports whether id is an element, optionally of the given tag.
// An empty tag matches any element.
func (d *Document) IsElement(id NodeID, tag string) bool {
	if !d.valid(id) || d.nodes[id].Kind != ElementNode {
		return false
	}
	return tag == "" || d.nodes[id].Tag == tag
}

// Tag returns the element name of id, or "" for non-elements.
func (d *Document) Tag(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].Tag
}

// Attr returns the value of the named attribute.
func (d *Document) Attr(id NodeID, key string) (string, bool) {
	if !d.valid(id) {
		return "", false
	}
	for _, a := range d.nodes[id].Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether id carries the named attribute.
func (d *Document) HasAttr(id NodeID, key string) bool {
	_, ok := d.Attr(id, key)
	return ok
}

// Children returns the direct children of id in document order.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	var out []NodeID
	for c := d.nodes[id].FirstChild; c != NoNode; c = d.nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildElements returns the direct element children of id with the given tag.
// An empty tag returns all element children.
func (d *Document) ChildElements(id NodeID, tag string) []NodeID {
	if !d.valid(id) {
		return nil
	}
	var out []NodeID
	for c := d.nodes[id].FirstChild; c != NoNode; c = d.nodes[c].NextSibling {
		if d.IsElement(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// walk visits every descendant of id in document order. The visitor returns
// false to stop the walk.
func (d *Document) walk(id NodeID, visit func(NodeID) bool) {
	if !d.valid(id) {
		return
	}
	cur := d.nodes[id].FirstChild
	for cur != NoNode {
		if !visit(cur) {
			return
		}
		if first := d.nodes[cur].FirstChild; first != NoNode {
			cur = first
			continue
		}
		for cur != id && d.nodes[cur].NextSibling == NoNode {
			cur = d.nodes[cur].Parent
		}
		if cur == id {
			return
		}
		cur = d.nodes[cur].NextSibling
	}
}

// FindAll returns every descendant of id (not id itself) matching pred, in
// document order. Matches nested inside other matches are included.
func (d *Document) FindAll(id NodeID, pred Predicate) []NodeID {
	var out []NodeID
	d.walk(id, func(n NodeID) bool {
		if pred(d, n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst returns the first descendant of id matching pred, or NoNode.
func (d *Document) FindFirst(id NodeID, pred Predicate) NodeID {
	found := NoNode
	d.walk(id, func(n NodeID) bool {
		if pred(d, n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByID returns the first descendant element of id whose id attribute
// equals value, or NoNode.
func (d *Document) FindByID(id NodeID, value string) NodeID {
	return d.FindFirst(id, func(d *Document, n NodeID) bool {
		v, ok := d.Attr(n, "id")
		return ok && d.IsElement(n, "") && v == value
	})
}

// ElementsByTag returns every descendant element of id with the given tag.
func (d *Document) ElementsByTag(id NodeID, tag string) []NodeID {
	return d.FindAll(id, func(d *Document, n NodeID) bool {
		return d.IsElement(n, tag)
	})
}

// DirectText returns the single string an element directly holds. A node
// whose only child is text yields that text; a node whose only child is an
// element yields that element's DirectText. Any other shape has no direct
// text and ok is false.
func (d *Document) DirectText(id NodeID) (text string, ok bool) {
	for d.valid(id) {
		n := d.nodes[id]
		if n.Kind == TextNode {
			return n.Text, true
		}
		if n.FirstChild == NoNode || n.FirstChild != n.LastChild {
			return "", false
		}
		id = n.FirstChild
	}
	return "", false
}
