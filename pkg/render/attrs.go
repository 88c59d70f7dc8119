package render

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/progressive/pkg/vdom"
)

// AttrFormatter turns props into attribute markup.
//
// FormatAttribute and FormatCustomAttribute return the complete "name=value"
// text of one attribute, or false when the prop renders nothing.
type AttrFormatter interface {
	FormatAttribute(name string, value any) (string, bool)
	FormatCustomAttribute(name string, value any) (string, bool)
	FormatRootMarker() string
	FormatIdentityMarker(id int) string
	FormatStyleMarkup(style map[string]any) string
}

// Markers emitted outside static mode.
const (
	RootMarkerAttr     = "data-reactroot"
	IdentityMarkerAttr = "data-reactid"
)

// DefaultFormatter is the AttrFormatter used when none is configured.
type DefaultFormatter struct{}

var _ AttrFormatter = DefaultFormatter{}

// propAttrNames maps prop names that differ from their attribute names.
var propAttrNames = map[string]string{
	"className":     "class",
	"htmlFor":       "for",
	"httpEquiv":     "http-equiv",
	"acceptCharset": "accept-charset",
}

// validAttrName matches attribute names safe to emit unquoted.
var validAttrName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z_:.\-0-9]*$`)

// FormatAttribute implements AttrFormatter.
func (DefaultFormatter) FormatAttribute(name string, value any) (string, bool) {
	if mapped, ok := propAttrNames[name]; ok {
		name = mapped
	}
	if !validAttrName.MatchString(name) {
		return "", false
	}
	if isBooleanAttr(strings.ToLower(name)) {
		if b, ok := value.(bool); ok {
			if !b {
				return "", false
			}
			return name + `=""`, true
		}
	}
	return quoteAttr(name, value)
}

// FormatCustomAttribute implements AttrFormatter. Custom elements get their
// props verbatim with no renaming.
func (DefaultFormatter) FormatCustomAttribute(name string, value any) (string, bool) {
	if !validAttrName.MatchString(name) {
		return "", false
	}
	return quoteAttr(name, value)
}

// FormatRootMarker implements AttrFormatter.
func (DefaultFormatter) FormatRootMarker() string {
	return RootMarkerAttr + `=""`
}

// FormatIdentityMarker implements AttrFormatter.
func (DefaultFormatter) FormatIdentityMarker(id int) string {
	return IdentityMarkerAttr + `="` + strconv.Itoa(id) + `"`
}

// FormatStyleMarkup implements AttrFormatter. Properties are emitted in
// sorted order as "name:value;" pairs with camelCase names hyphenated.
func (DefaultFormatter) FormatStyleMarkup(style map[string]any) string {
	names := make([]string, 0, len(style))
	for name, value := range style {
		if value != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(hyphenateStyleName(name))
		b.WriteByte(':')
		b.WriteString(styleValue(name, style[name]))
		b.WriteByte(';')
	}
	return b.String()
}

func quoteAttr(name string, value any) (string, bool) {
	if value == nil {
		return "", false
	}
	return name + `="` + escapeAttr(attrToString(value)) + `"`, true
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	if s, ok := vdom.Primitive(value); ok {
		return s
	}
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// isEventHandler reports whether a prop is an event handler: an onX prop or
// any function value.
func isEventHandler(name string, value any) bool {
	if len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z' {
		return true
	}
	t := reflect.TypeOf(value)
	return t != nil && t.Kind() == reflect.Func
}

// reservedProps never render as attributes.
var reservedProps = map[string]bool{
	vdom.PropChildren:                       true,
	vdom.PropDangerouslySetInnerHTML:        true,
	vdom.PropSuppressContentEditableWarning: true,
}

// unitlessStyles accept bare numbers.
var unitlessStyles = map[string]bool{
	"animationIterationCount": true,
	"borderImageOutset":       true,
	"borderImageSlice":        true,
	"borderImageWidth":        true,
	"boxFlex":                 true,
	"boxFlexGroup":            true,
	"boxOrdinalGroup":         true,
	"columnCount":             true,
	"fillOpacity":             true,
	"flex":                    true,
	"flexGrow":                true,
	"flexNegative":            true,
	"flexOrder":               true,
	"flexPositive":            true,
	"flexShrink":              true,
	"floodOpacity":            true,
	"fontWeight":              true,
	"gridColumn":              true,
	"gridRow":                 true,
	"lineClamp":               true,
	"lineHeight":              true,
	"opacity":                 true,
	"order":                   true,
	"orphans":                 true,
	"stopOpacity":             true,
	"strokeDasharray":         true,
	"strokeDashoffset":        true,
	"strokeMiterlimit":        true,
	"strokeOpacity":           true,
	"strokeWidth":             true,
	"tabSize":                 true,
	"widows":                  true,
	"zIndex":                  true,
	"zoom":                    true,
}

// hyphenateStyleName turns "backgroundColor" into "background-color" and
// "msTransition" into "-ms-transition".
func hyphenateStyleName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('-')
			b.WriteByte(c + ('a' - 'A'))
			continue
		}
		b.WriteByte(c)
	}
	s := b.String()
	if strings.HasPrefix(s, "ms-") {
		return "-" + s
	}
	return s
}

func styleValue(name string, value any) string {
	switch v := value.(type) {
	case bool:
		return ""
	case string:
		return strings.TrimSpace(v)
	}
	s, ok := vdom.Primitive(value)
	if !ok {
		return strings.TrimSpace(fmt.Sprint(value))
	}
	if s == "0" || unitlessStyles[name] {
		return s
	}
	return s + "px"
}
