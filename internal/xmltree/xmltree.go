// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xmltree parses XML documents into a small element tree and looks
// elements up through ordered matcher tiers, so callers can ask for a
// namespace-qualified name and still find elements whose namespace differs
// between deployments of the same API.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XMLNamespace is the namespace bound to the reserved "xml" prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Element is one parsed XML element. Name.Space holds the resolved namespace
// URI, not the prefix used in the source document.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Element

	// Text is the element's own character data, concatenated. Character
	// data of child elements is not included.
	Text string

	// content holds the element's text nodes (string) and children
	// (*Element) in document order. Adjacent character data, including
	// CDATA sections, forms one text node.
	content []any
}

// Parse reads a single XML document from r and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
				parent.content = append(parent.content, el)
			} else if root != nil {
				return nil, fmt.Errorf("multiple root elements: <%s> after <%s>", t.Name.Local, root.Name.Local)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].addText(string(t))
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unexpected end of document inside <%s>", stack[len(stack)-1].Name.Local)
	}
	return root, nil
}

// AttrValue returns the value of the attribute with the given namespace and
// local name. The namespace may be given as a URI or as the raw prefix.
func (e *Element) AttrValue(space, local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

// Lang returns the element's xml:lang attribute, or "" if it has none.
func (e *Element) Lang() string {
	if v, ok := e.AttrValue(XMLNamespace, "lang"); ok {
		return v
	}
	if v, ok := e.AttrValue("xml", "lang"); ok {
		return v
	}
	return ""
}

func (e *Element) addText(s string) {
	e.Text += s
	if n := len(e.content); n > 0 {
		if prev, ok := e.content[n-1].(string); ok {
			e.content[n-1] = prev + s
			return
		}
	}
	e.content = append(e.content, s)
}

// Texts returns the trimmed, non-empty text nodes of e and its descendants
// in document order. Text interrupted by a child element yields one value
// per node: <t>Alpha<sub>2</sub> Beta</t> gives "Alpha", "2", "Beta".
func (e *Element) Texts() []string {
	var out []string
	e.texts(&out)
	return out
}

func (e *Element) texts(out *[]string) {
	for _, c := range e.content {
		switch v := c.(type) {
		case string:
			if t := strings.TrimSpace(v); t != "" {
				*out = append(*out, t)
			}
		case *Element:
			v.texts(out)
		}
	}
}

// FirstText returns the first non-empty text node under e in document order.
func (e *Element) FirstText() (string, bool) {
	texts := e.Texts()
	if len(texts) == 0 {
		return "", false
	}
	return texts[0], true
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.walk(fn)
	}
}
