package render

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/progressive/pkg/vdom"
)

// Instance is a node prepared for mounting.
//
// Mount is called exactly once and returns the node's markup. The renderer
// is write-once: Receive, HostNode and Unmount always fail with
// ErrUnsupportedOperation.
type Instance interface {
	Mount(ctx context.Context, tx *Transaction, parent *HostInfo, container *ContainerInfo) (Markup, error)
	Receive(next *vdom.VNode) error
	HostNode() (any, error)
	Unmount() error
}

// mountOnly implements the update half of Instance.
type mountOnly struct {
	mounted bool
}

func (m *mountOnly) Receive(*vdom.VNode) error {
	return newError("R004", "receive is not supported")
}

func (m *mountOnly) HostNode() (any, error) {
	return nil, newError("R004", "host nodes are not available on the server")
}

func (m *mountOnly) Unmount() error {
	return newError("R004", "unmount is not supported")
}

func (m *mountOnly) begin() error {
	if m.mounted {
		return newError("R004", "instance is already mounted")
	}
	m.mounted = true
	return nil
}

// Instantiate prepares node for mounting. Host tag names are validated here.
func (r *Renderer) Instantiate(node *vdom.VNode) (Instance, error) {
	if !node.Valid() {
		return nil, invalidElement(node)
	}
	switch node.Kind {
	case vdom.KindElement:
		if !r.tags.valid(node.Tag) {
			return nil, newError("R002", "invalid tag: "+node.Tag)
		}
		return &hostInstance{r: r, node: node, tag: strings.ToLower(node.Tag)}, nil
	case vdom.KindText:
		return &textInstance{r: r, text: node.Text}, nil
	case vdom.KindEmpty:
		return &emptyInstance{}, nil
	default:
		return &compositeInstance{r: r, comp: node.Comp}, nil
	}
}

func invalidElement(node *vdom.VNode) error {
	switch {
	case node == nil:
		return newError("R001", "node is nil")
	case node.Kind == vdom.KindFragment:
		return newError("R001", "fragments are only valid inside a children value")
	case node.Kind == vdom.KindElement:
		return newError("R001", "element has no tag")
	case node.Kind == vdom.KindComponent:
		return newError("R001", "component node has no component")
	default:
		return newError("R001", "unknown node kind "+node.Kind.String())
	}
}

// textInstance renders escaped text between two id markers.
type textInstance struct {
	mountOnly
	r    *Renderer
	text string
}

func (t *textInstance) Mount(_ context.Context, tx *Transaction, parent *HostInfo, container *ContainerInfo) (Markup, error) {
	if err := t.begin(); err != nil {
		return Markup{}, err
	}
	id := tx.NextID()
	t.r.validator.Validate("", t.text, parentAncestry(parent, container))

	escaped := escapeHTML(t.text)
	if tx.Static() {
		return Atomic(escaped), nil
	}
	return Atomic(textMarker(id) + escaped + "<!-- /react-text -->"), nil
}

func textMarker(id int) string {
	return "<!-- react-text: " + strconv.Itoa(id) + " -->"
}

// emptyInstance renders a placeholder marker, or nothing in static mode.
type emptyInstance struct {
	mountOnly
}

func (e *emptyInstance) Mount(_ context.Context, tx *Transaction, _ *HostInfo, _ *ContainerInfo) (Markup, error) {
	if err := e.begin(); err != nil {
		return Markup{}, err
	}
	id := tx.NextID()
	if tx.Static() {
		return Atomic(""), nil
	}
	return Atomic("<!-- react-empty: " + strconv.Itoa(id) + " -->"), nil
}

// compositeInstance renders its component once and mounts the result in
// its own place. It adds no markup of its own.
type compositeInstance struct {
	mountOnly
	r    *Renderer
	comp vdom.Component
}

func (c *compositeInstance) Mount(ctx context.Context, tx *Transaction, parent *HostInfo, container *ContainerInfo) (Markup, error) {
	if err := c.begin(); err != nil {
		return Markup{}, err
	}

	var out *vdom.VNode
	if cc, ok := c.comp.(vdom.ContextComponent); ok {
		out = cc.RenderContext(ctx)
	} else {
		out = c.comp.Render()
	}
	if out == nil {
		out = vdom.Empty()
	}

	child, err := c.r.Instantiate(out)
	if err != nil {
		return Markup{}, err
	}
	return child.Mount(ctx, tx, parent, container)
}

// hostInstance renders an element: open tag, content, close tag.
type hostInstance struct {
	mountOnly
	r    *Renderer
	node *vdom.VNode
	tag  string // lowercased for table lookups
}

func (h *hostInstance) Mount(ctx context.Context, tx *Transaction, parent *HostInfo, container *ContainerInfo) (Markup, error) {
	if err := h.begin(); err != nil {
		return Markup{}, err
	}
	id := tx.NextID()
	props := h.node.Props

	if err := h.assertValidProps(); err != nil {
		return Markup{}, err
	}

	var ns Namespace
	var parentTag string
	if parent != nil {
		ns, parentTag = parent.Namespace, parent.Tag
	} else if container != nil {
		ns = container.Namespace
	}
	ancestry := parentAncestry(parent, container)
	h.r.validator.Validate(h.tag, "", ancestry)
	self := &HostInfo{
		Tag:       h.tag,
		Namespace: elementNamespace(ns, parentTag, h.tag),
		Ancestry:  &AncestorInfo{Tag: h.tag, Parent: ancestry},
	}

	open := h.openTag(tx, props, parent == nil, id)
	content, err := h.content(ctx, tx, self, container)
	if err != nil {
		return Markup{}, err
	}

	// Pull lazy content up to its first chunk so an element that turns out
	// empty can still be self-closed.
	first := content.String()
	var body *Sequence
	if content.IsLazy() {
		seq := content.Sequence()
		chunk, ok, err := seq.Next()
		if err != nil {
			return Markup{}, err
		}
		if ok {
			first, body = chunk, seq
		}
	}

	if first == "" && omittedCloseTags[h.tag] {
		return Atomic(open + "/>"), nil
	}
	if newlineEatingTags[h.tag] && strings.HasPrefix(first, "\n") {
		first = "\n" + first
	}

	closeTag := "</" + h.node.Tag + ">"
	if body != nil {
		return Lazy(newSequence(&hostFrame{
			head: open + ">" + first,
			body: body,
			tail: closeTag,
		})), nil
	}
	return Atomic(open + ">" + first + closeTag), nil
}

func (h *hostInstance) assertValidProps() error {
	props := h.node.Props
	children := h.node.Children
	innerHTML, hasInnerHTML := props[vdom.PropDangerouslySetInnerHTML]
	hasInnerHTML = hasInnerHTML && innerHTML != nil

	if isVoidElement(h.tag) && (children != nil || hasInnerHTML) {
		return newError("R003", h.tag+" is a void element tag and must neither have children nor use dangerouslySetInnerHTML").
			WithSuggestion("Remove the content of <" + h.node.Tag + ">")
	}
	if hasInnerHTML {
		if children != nil {
			return newError("R003", "can only set one of children or dangerouslySetInnerHTML on <"+h.node.Tag+">")
		}
		if _, ok := innerHTML.(string); !ok {
			return newError("R006", "dangerouslySetInnerHTML on <"+h.node.Tag+"> is not a string")
		}
	}
	switch props[vdom.PropStyle].(type) {
	case nil, map[string]any, string:
	default:
		return newError("R005", "style on <"+h.node.Tag+"> is neither a map nor a string").
			WithSuggestion(`Use vdom.Style(map[string]any{"marginRight": 4})`)
	}
	return nil
}

// openTag returns the open tag without its closing ">". Props are emitted in
// sorted order.
func (h *hostInstance) openTag(tx *Transaction, props vdom.Props, root bool, id int) string {
	f := h.r.formatter

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(h.node.Tag)

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	custom := h.node.IsCustomElement()
	for _, key := range keys {
		value := props[key]
		if value == nil || reservedProps[key] || isEventHandler(key, value) {
			continue
		}
		if key == vdom.PropStyle {
			if style, ok := value.(map[string]any); ok {
				value = f.FormatStyleMarkup(style)
			}
			if value == "" {
				continue
			}
		}

		var markup string
		var ok bool
		if custom {
			markup, ok = f.FormatCustomAttribute(key, value)
		} else {
			markup, ok = f.FormatAttribute(key, value)
		}
		if ok && markup != "" {
			b.WriteByte(' ')
			b.WriteString(markup)
		}
	}

	if tx.Static() {
		return b.String()
	}
	if root {
		b.WriteByte(' ')
		b.WriteString(f.FormatRootMarker())
	}
	b.WriteByte(' ')
	b.WriteString(f.FormatIdentityMarker(id))
	return b.String()
}

// content returns the markup between the open and close tags.
func (h *hostInstance) content(ctx context.Context, tx *Transaction, self *HostInfo, container *ContainerInfo) (Markup, error) {
	if html, ok := h.node.Props[vdom.PropDangerouslySetInnerHTML].(string); ok {
		return Atomic(html), nil
	}

	children := h.node.Children
	switch v := children.(type) {
	case nil:
		return Atomic(""), nil
	case bool:
		// Booleans are not content.
	case *vdom.VNode:
		if v != nil && v.Kind != vdom.KindFragment {
			child, err := h.r.Instantiate(v)
			if err != nil {
				return Markup{}, err
			}
			return child.Mount(ctx, tx, self, container)
		}
	default:
		if text, ok := vdom.Primitive(children); ok {
			h.r.validator.Validate("", text, self.Ancestry)
			return Atomic(escapeHTML(text)), nil
		}
	}

	kids, dupes, err := vdom.FlattenChildren(children)
	if err != nil {
		return Markup{}, newError("R001", "invalid child of <"+h.node.Tag+">").Wrap(err)
	}
	for _, key := range dupes {
		h.r.logger.Warn("duplicate child key, keeping the first",
			"key", key, "tag", h.node.Tag)
	}
	if len(kids) == 0 {
		return Atomic(""), nil
	}
	return Lazy(newSequence(&childrenFrame{
		ctx:       ctx,
		r:         h.r,
		tx:        tx,
		parent:    self,
		container: container,
		kids:      kids,
	})), nil
}

// childrenFrame mounts one child per step, so no child is rendered before
// the consumer asks for output that needs it.
type childrenFrame struct {
	ctx       context.Context
	r         *Renderer
	tx        *Transaction
	parent    *HostInfo
	container *ContainerInfo
	kids      []vdom.Child
	next      int
}

func (f *childrenFrame) step() (string, *Sequence, bool, error) {
	if f.next >= len(f.kids) {
		return "", nil, true, nil
	}
	if err := f.ctx.Err(); err != nil {
		return "", nil, false, err
	}
	node := f.kids[f.next].Node
	f.kids[f.next] = vdom.Child{}
	f.next++

	child, err := f.r.Instantiate(node)
	if err != nil {
		return "", nil, false, err
	}
	m, err := child.Mount(f.ctx, f.tx, f.parent, f.container)
	if err != nil {
		return "", nil, false, err
	}
	if m.IsLazy() {
		return "", m.Sequence(), false, nil
	}
	return m.String(), nil, false, nil
}

func parentAncestry(parent *HostInfo, container *ContainerInfo) *AncestorInfo {
	if parent != nil {
		return parent.Ancestry
	}
	if container != nil {
		return container.Ancestry
	}
	return nil
}
