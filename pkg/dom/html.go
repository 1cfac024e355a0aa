package dom

import (
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLDocument is a Document over a parsed HTML tree.
type HTMLDocument struct {
	doc *goquery.Document
}

var _ Document = (*HTMLDocument)(nil)

// Parse reads a full HTML document.
func Parse(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	return &HTMLDocument{doc: doc}, nil
}

// Render writes the document back out.
func (d *HTMLDocument) Render(w io.Writer) error {
	out, err := d.doc.Html()
	if err != nil {
		return errors.Join(ErrRender, err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return errors.Join(ErrRender, err)
	}
	return nil
}

func (d *HTMLDocument) QueryAll(selector string) []Element {
	nodes := d.doc.Find(selector).Nodes
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &HTMLElement{node: n})
	}
	return out
}

func (d *HTMLDocument) Root() Element {
	if n := d.doc.Find("html").Nodes; len(n) > 0 {
		return &HTMLElement{node: n[0]}
	}
	root := newNode("html")
	d.doc.Nodes[0].AppendChild(root)
	return &HTMLElement{node: root}
}

func (d *HTMLDocument) Head() Element {
	if n := d.doc.Find("head").Nodes; len(n) > 0 {
		return &HTMLElement{node: n[0]}
	}
	root := d.Root().(*HTMLElement)
	head := newNode("head")
	root.node.InsertBefore(head, root.node.FirstChild)
	return &HTMLElement{node: head}
}

func (d *HTMLDocument) CreateElement(tag string) Element {
	return &HTMLElement{node: newNode(strings.ToLower(tag))}
}

func newNode(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// HTMLElement is an Element backed by an html.Node.
type HTMLElement struct {
	node *html.Node
}

func (e *HTMLElement) TagName() string { return strings.ToLower(e.node.Data) }

func (e *HTMLElement) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *HTMLElement) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *HTMLElement) RemoveAttr(name string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
}

func (e *HTMLElement) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *HTMLElement) AddClass(names ...string) {
	list := e.classes()
	for _, n := range names {
		if n != "" && !slices.Contains(list, n) {
			list = append(list, n)
		}
	}
	if len(list) > 0 {
		e.SetAttr("class", strings.Join(list, " "))
	}
}

func (e *HTMLElement) RemoveClass(names ...string) {
	list := slices.DeleteFunc(e.classes(), func(c string) bool {
		return slices.Contains(names, c)
	})
	if len(list) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(list, " "))
}

func (e *HTMLElement) HasClass(name string) bool {
	return slices.Contains(e.classes(), name)
}

type declaration struct{ name, value string }

func (e *HTMLElement) declarations() []declaration {
	style, _ := e.Attr("style")
	var out []declaration
	for _, part := range splitDeclarations(style) {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, declaration{name: name, value: strings.TrimSpace(value)})
	}
	return out
}

// splitDeclarations splits an inline style on the semicolons that end a
// declaration. Semicolons inside quotes or parentheses, as in
// url(data:image/png;base64,...), belong to the value.
func splitDeclarations(style string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
		esc   bool
	)
	for i, r := range style {
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == ';' && depth == 0:
			parts = append(parts, style[start:i])
			start = i + 1
		}
	}
	return append(parts, style[start:])
}

// CSSURL returns a quoted CSS url() value for u.
func CSSURL(u string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `url("` + r.Replace(u) + `")`
}

func (e *HTMLElement) SetStyleProperty(name, value string) {
	decls := e.declarations()
	replaced := false
	for i := range decls {
		if decls[i].name == name {
			decls[i].value = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, declaration{name: name, value: value})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.name+": "+d.value)
	}
	e.SetAttr("style", strings.Join(parts, "; ")+";")
}

func (e *HTMLElement) StyleProperty(name string) (string, bool) {
	for _, d := range e.declarations() {
		if d.name == name {
			return d.value, true
		}
	}
	return "", false
}

func (e *HTMLElement) AppendChild(child Element) error {
	c, ok := child.(*HTMLElement)
	if !ok {
		return ErrForeignElement
	}
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	e.node.AppendChild(c.node)
	return nil
}
