package vdom

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, []any, Component,
// string, a number or bool. Attributes are collected into Props; everything
// else becomes a child. A single child is stored as-is, several children are
// stored as a []any in argument order.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind: KindElement,
		Tag:  tag,
	}

	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, attr := range v {
				node.setAttr(attr)
			}

		case *VNode:
			if v != nil {
				children = append(children, v)
			}

		case Component:
			children = append(children, Mount(v))

		default:
			children = append(children, v)
		}
	}

	switch len(children) {
	case 0:
	case 1:
		node.Children = children[0]
	default:
		node.Children = children
	}
	return node
}

func (v *VNode) setAttr(attr Attr) {
	if attr.Key == "" {
		return
	}
	if attr.Key == "key" {
		if s, ok := attr.Value.(string); ok {
			v.Key = s
		}
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[attr.Key] = attr.Value
}

// El creates an element with an arbitrary tag name. Tags are validated at
// render time, not here.
func El(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

// Document structure elements

func Html(args ...any) *VNode  { return createElement("html", args) }
func Head(args ...any) *VNode  { return createElement("head", args) }
func Body(args ...any) *VNode  { return createElement("body", args) }
func Title(args ...any) *VNode { return createElement("title", args) }
func Meta(args ...any) *VNode  { return createElement("meta", args) }
func Link(args ...any) *VNode  { return createElement("link", args) }

// Content elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func Div(args ...any) *VNode     { return createElement("div", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func Pre(args ...any) *VNode     { return createElement("pre", args) }
func Ul(args ...any) *VNode      { return createElement("ul", args) }
func Ol(args ...any) *VNode      { return createElement("ol", args) }
func Li(args ...any) *VNode      { return createElement("li", args) }
func A(args ...any) *VNode       { return createElement("a", args) }
func Strong(args ...any) *VNode  { return createElement("strong", args) }
func Em(args ...any) *VNode      { return createElement("em", args) }
func Table(args ...any) *VNode   { return createElement("table", args) }
func Tbody(args ...any) *VNode   { return createElement("tbody", args) }
func Tr(args ...any) *VNode      { return createElement("tr", args) }
func Td(args ...any) *VNode      { return createElement("td", args) }

// Void elements

func Br(args ...any) *VNode    { return createElement("br", args) }
func Hr(args ...any) *VNode    { return createElement("hr", args) }
func Img(args ...any) *VNode   { return createElement("img", args) }
func Input(args ...any) *VNode { return createElement("input", args) }

// Form elements

func Form(args ...any) *VNode     { return createElement("form", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }

// Foreign content

func Svg(args ...any) *VNode           { return createElement("svg", args) }
func Math(args ...any) *VNode          { return createElement("math", args) }
func ForeignObject(args ...any) *VNode { return createElement("foreignObject", args) }
