package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Prop names with special handling. All but PropStyle are reserved and
// never render as attributes.
const (
	PropChildren                       = "children"
	PropDangerouslySetInnerHTML        = "dangerouslySetInnerHTML"
	PropSuppressContentEditableWarning = "suppressContentEditableWarning"
	PropStyle                          = "style"
)

// Prop sets an arbitrary prop. Nil values are skipped at render time.
func Prop(name string, value any) Attr { return attr(name, value) }

// Key sets the reconciliation key of the node.
func Key(key string) Attr { return attr("key", key) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the className prop, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("className", strings.Join(classes, " ")) }

// Style sets the style prop from a map of camelCase property names.
// Example: Style(map[string]any{"fontSize": 13}) → style="font-size:13px;"
func Style(style map[string]any) Attr { return attr(PropStyle, style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key string, value any) Attr { return attr("data-"+key, value) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value any) Attr { return attr("value", value) }

// Disabled marks the element disabled.
func Disabled() Attr { return attr("disabled", true) }

// Checked marks the element checked.
func Checked() Attr { return attr("checked", true) }

// Is sets the "is" prop, turning the element into a customized built-in.
func Is(name string) Attr { return attr("is", name) }

// DangerouslySetInnerHTML sets raw markup as the element's content.
// The markup is emitted unescaped; it excludes ordinary children.
func DangerouslySetInnerHTML(html string) Attr {
	return attr(PropDangerouslySetInnerHTML, html)
}

// On attaches an event handler. Handlers never render as markup.
// Example: On("Click", fn) → onClick
func On(event string, handler any) Attr { return attr("on"+event, handler) }
