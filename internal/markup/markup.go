// Package markup reads and writes XML documents as a generic tree of
// elements, keeping attribute and child order.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Element `xml:",any"`
	Text     string     `xml:",chardata"`
}

func New(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

func (e *Element) Name() string {
	return e.XMLName.Local
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr appends an attribute, or replaces the value of an existing one.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Decode parses a document and returns its root element.
func Decode(r io.Reader) (*Element, error) {
	var root Element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("libtmx: failed to parse markup: %w", err)
	}
	return &root, nil
}

// Encode writes root as an indented UTF-8 document with an XML declaration.
func Encode(w io.Writer, root *Element) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", " ")
	if err := encoder.Encode(clean(root)); err != nil {
		return fmt.Errorf("libtmx: failed to write markup: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// clean drops whitespace-only text of elements that have children, left
// over from decoding indented documents.
func clean(e *Element) *Element {
	out := *e
	if len(e.Children) > 0 && strings.TrimSpace(e.Text) == "" {
		out.Text = ""
	}
	out.Children = make([]*Element, len(e.Children))
	for i, c := range e.Children {
		out.Children[i] = clean(c)
	}
	return &out
}
