package render

import (
	"regexp"
	"sync"
)

// omittedCloseTags are elements whose close tag is omitted: when they end up
// without content they render self-closed ("<br/>").
var omittedCloseTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// voidElementTags are elements that may have neither children nor raw HTML.
// menuitem is void but still gets an explicit close tag.
var voidElementTags = func() map[string]bool {
	m := map[string]bool{"menuitem": true}
	for tag := range omittedCloseTags {
		m[tag] = true
	}
	return m
}()

// newlineEatingTags drop a leading newline of their content when parsed.
var newlineEatingTags = map[string]bool{
	"listing":  true,
	"pre":      true,
	"textarea": true,
}

// isVoidElement returns true if the tag (lowercased) may not have content.
func isVoidElement(tag string) bool {
	return voidElementTags[tag]
}

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered with an empty value.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// validTagRegex is a simplified subset of the XML Name production.
var validTagRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z:_.\-0-9]*$`)

// tagCache remembers the validation outcome of every distinct tag name.
// Invalid names stay invalid; they are not re-checked.
type tagCache struct {
	m sync.Map // string -> bool
}

func (c *tagCache) valid(tag string) bool {
	if v, ok := c.m.Load(tag); ok {
		return v.(bool)
	}
	ok := validTagRegex.MatchString(tag)
	c.m.Store(tag, ok)
	return ok
}
