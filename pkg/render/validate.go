package render

import (
	"log/slog"
	"slices"
	"strings"
)

// Namespace is the markup namespace a host element is created in.
type Namespace uint8

const (
	NamespaceHTML Namespace = iota
	NamespaceSVG
	NamespaceMathML
)

// URI returns the namespace URI.
func (n Namespace) URI() string {
	switch n {
	case NamespaceSVG:
		return "http://www.w3.org/2000/svg"
	case NamespaceMathML:
		return "http://www.w3.org/1998/Math/MathML"
	default:
		return "http://www.w3.org/1999/xhtml"
	}
}

// String returns a short namespace name.
func (n Namespace) String() string {
	switch n {
	case NamespaceSVG:
		return "svg"
	case NamespaceMathML:
		return "mathml"
	default:
		return "html"
	}
}

// elementNamespace returns the namespace of tag when created under a parent
// in namespace parent with the (lowercased) tag parentTag.
func elementNamespace(parent Namespace, parentTag, tag string) Namespace {
	if parent == NamespaceSVG && parentTag == "foreignobject" {
		parent = NamespaceHTML
	}
	if parent == NamespaceHTML {
		switch tag {
		case "svg":
			return NamespaceSVG
		case "math":
			return NamespaceMathML
		}
	}
	return parent
}

// AncestorInfo is the chain of open host tags above a node, innermost first.
type AncestorInfo struct {
	Tag    string
	Parent *AncestorInfo
}

// Has reports whether tag is open anywhere in the chain.
func (a *AncestorInfo) Has(tag string) bool {
	for ; a != nil; a = a.Parent {
		if a.Tag == tag {
			return true
		}
	}
	return false
}

// Path renders the chain outermost first, e.g. "div > p".
func (a *AncestorInfo) Path() string {
	var tags []string
	for ; a != nil; a = a.Parent {
		tags = append(tags, a.Tag)
	}
	for i, j := 0, len(tags)-1; i < j; i, j = i+1, j-1 {
		tags[i], tags[j] = tags[j], tags[i]
	}
	return strings.Join(tags, " > ")
}

// ContainerInfo describes where a tree is mounted.
type ContainerInfo struct {
	Namespace Namespace
	Ancestry  *AncestorInfo
}

// HostInfo describes the nearest host element above a node.
type HostInfo struct {
	Tag       string // lowercased
	Namespace Namespace
	Ancestry  *AncestorInfo // includes Tag itself
}

// NestingValidator checks that a child may appear where it is mounted.
// It is called once per host element (text empty) and once per text node
// (tag empty). Findings are diagnostics; validators never fail a render.
type NestingValidator interface {
	Validate(tag, text string, parent *AncestorInfo)
}

// NopValidator accepts everything.
type NopValidator struct{}

// Validate implements NestingValidator.
func (NopValidator) Validate(string, string, *AncestorInfo) {}

// LogValidator logs common nesting mistakes at Warn level.
type LogValidator struct {
	Logger *slog.Logger
}

// NewLogValidator creates a LogValidator. A nil logger uses slog.Default.
func NewLogValidator(logger *slog.Logger) *LogValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogValidator{Logger: logger.With("component", "nesting")}
}

// blockInParagraph are tags that implicitly close an open <p>.
var blockInParagraph = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "fieldset": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "ul": true,
}

// requiredParents lists the only parents a tag may have.
var requiredParents = map[string][]string{
	"li":       {"ul", "ol", "menu"},
	"tr":       {"table", "tbody", "thead", "tfoot"},
	"td":       {"tr"},
	"th":       {"tr"},
	"tbody":    {"table"},
	"thead":    {"table"},
	"tfoot":    {"table"},
	"option":   {"select", "datalist", "optgroup"},
	"optgroup": {"select"},
}

// textless are tags that may not contain text directly.
var textless = map[string]bool{
	"table": true, "tbody": true, "thead": true, "tfoot": true, "tr": true,
	"ul": true, "ol": true, "select": true,
}

// noSelfNesting may not appear inside themselves at any depth.
var noSelfNesting = map[string]bool{"a": true, "button": true, "form": true}

// Validate implements NestingValidator.
func (v *LogValidator) Validate(tag, text string, parent *AncestorInfo) {
	if parent == nil {
		return
	}
	if tag == "" {
		if textless[parent.Tag] && strings.TrimSpace(text) != "" {
			v.warn("text cannot appear as a child of <"+parent.Tag+">", parent, "text", text)
		}
		return
	}

	if parents, ok := requiredParents[tag]; ok && !slices.Contains(parents, parent.Tag) {
		v.warn("<"+tag+"> cannot appear as a child of <"+parent.Tag+">", parent, "tag", tag)
		return
	}
	if parent.Tag == "p" && blockInParagraph[tag] {
		v.warn("<"+tag+"> cannot appear as a descendant of <p>", parent, "tag", tag)
		return
	}
	if noSelfNesting[tag] && parent.Has(tag) {
		v.warn("<"+tag+"> cannot appear as a descendant of <"+tag+">", parent, "tag", tag)
	}
}

func (v *LogValidator) warn(msg string, parent *AncestorInfo, key, value string) {
	v.Logger.Warn("invalid nesting: "+msg, key, value, "ancestry", parent.Path())
}
