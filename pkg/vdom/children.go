package vdom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	keySeparator    = "."
	keySubseparator = ":"
)

// Child is one entry of a flattened children value.
type Child struct {
	Key  string
	Node *VNode
}

// InvalidChildError reports a children entry that is not a tree node.
type InvalidChildError struct {
	Key   string
	Value any
}

func (e *InvalidChildError) Error() string {
	return fmt.Sprintf("invalid child %s of type %T", e.Key, e.Value)
}

// FlattenChildren normalizes a nested children value into an ordered sequence
// of uniquely keyed nodes.
//
// Traversal is depth-first, left to right. Every nesting level prefixes the
// generated keys of its descendants, so equal explicit keys at different
// depths never collide. An explicit key replaces the positional index at its
// level. Nil and bool entries are dropped without claiming a key. Strings and
// numbers become text nodes.
//
// When two entries resolve to the same key the first one wins; the keys of
// the discarded entries are returned as dupes, in traversal order.
func FlattenChildren(children any) (kids []Child, dupes []string, err error) {
	f := flattener{seen: make(map[string]struct{})}
	if err := f.walk(children, ""); err != nil {
		return nil, nil, err
	}
	return f.out, f.dupes, nil
}

type flattener struct {
	seen  map[string]struct{}
	out   []Child
	dupes []string
}

func (f *flattener) walk(children any, name string) error {
	switch v := children.(type) {
	case nil, bool:
		return nil

	case []any:
		prefix := seqPrefix(name)
		for i, child := range v {
			if err := f.walk(child, prefix+componentKey(child, i)); err != nil {
				return err
			}
		}
		return nil

	case []*VNode:
		prefix := seqPrefix(name)
		for i, child := range v {
			if err := f.walk(child, prefix+componentKey(child, i)); err != nil {
				return err
			}
		}
		return nil

	case *VNode:
		if v == nil {
			return nil
		}
		if name == "" {
			name = keySeparator + componentKey(v, 0)
		}
		if v.Kind == KindFragment {
			return f.walk(v.Children, name)
		}
		if !v.Valid() {
			return &InvalidChildError{Key: name, Value: v}
		}
		f.add(name, v)
		return nil

	case Component:
		return f.walk(Mount(v), name)
	}

	text, ok := Primitive(children)
	if !ok {
		if name == "" {
			name = keySeparator + "0"
		}
		return &InvalidChildError{Key: name, Value: children}
	}
	if name == "" {
		name = keySeparator + "0"
	}
	f.add(name, Text(text))
	return nil
}

func (f *flattener) add(name string, node *VNode) {
	if _, dup := f.seen[name]; dup {
		f.dupes = append(f.dupes, UnescapeKey(name))
		return
	}
	f.seen[name] = struct{}{}
	f.out = append(f.out, Child{Key: name, Node: node})
}

func seqPrefix(name string) string {
	if name == "" {
		return keySeparator
	}
	return name + keySubseparator
}

// componentKey returns the key segment identifying child at index i.
func componentKey(child any, i int) string {
	if n, ok := child.(*VNode); ok && n.HasKey() {
		return EscapeKey(n.Key)
	}
	return strconv.FormatInt(int64(i), 36)
}

var (
	keyEscaper   = strings.NewReplacer("=", "=0", ":", "=2")
	keyUnescaper = strings.NewReplacer("=0", "=", "=2", ":")
)

// EscapeKey turns an explicit key into a key segment that cannot be confused
// with a positional index or a separator.
func EscapeKey(key string) string {
	return "$" + keyEscaper.Replace(key)
}

// UnescapeKey reverses EscapeKey on the last explicit segment of a generated
// key, for diagnostics. Positional keys are returned unchanged.
func UnescapeKey(name string) string {
	i := strings.LastIndex(name, "$")
	if i < 0 {
		return name
	}
	return keyUnescaper.Replace(name[i+1:])
}

// Primitive returns the text form of a string or number children value.
func Primitive(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatFloat(float64(n)), true
	case float64:
		return formatFloat(n), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	if math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
