package render

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// elem builds an element node with the given attributes and children.
func elem(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	for _, child := range children {
		if child != nil {
			n.AppendChild(child)
		}
	}
	return n
}

// div builds a <div> with the given class.
func div(class string, children ...*html.Node) *html.Node {
	return elem(atom.Div, classAttr(class), children...)
}

// textNode builds an escaped text node.
func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// tagged builds an element holding only text.
func tagged(a atom.Atom, class, s string) *html.Node {
	return elem(a, classAttr(class), textNode(s))
}

func classAttr(class string) []html.Attribute {
	if class == "" {
		return nil
	}
	return []html.Attribute{{Key: "class", Val: class}}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// link builds an anchor to href.
func link(href, class string, children ...*html.Node) *html.Node {
	attrs := append([]html.Attribute{attr("href", href)}, classAttr(class)...)
	return elem(atom.A, attrs, children...)
}

// appendAll appends children to parent, detaching them from any previous
// parent first.
func appendAll(parent *html.Node, children []*html.Node) {
	for _, child := range children {
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		parent.AppendChild(child)
	}
}
