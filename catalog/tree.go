package catalog

import (
	"iter"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/wippyai/ads-symbols/errors"
)

// Node is an element of the variable tree: a *Namespace or a *Variable.
type Node interface {
	Name() string
	Path() []string
}

// Namespace is an intermediate node created from a dotted symbol name
// prefix, such as "MAIN" for "MAIN.counter".
type Namespace struct {
	children *orderedmap.OrderedMap[string, Node]
	path     []string
}

func newNamespace(path []string) *Namespace {
	return &Namespace{
		children: orderedmap.NewOrderedMap[string, Node](),
		path:     path,
	}
}

// Name returns the last path segment, or "" for the root.
func (n *Namespace) Name() string {
	if len(n.path) == 0 {
		return ""
	}
	return n.path[len(n.path)-1]
}

// Path returns the segments from the root to this namespace.
func (n *Namespace) Path() []string {
	return n.path
}

// Child returns the direct child with the given name.
func (n *Namespace) Child(name string) (Node, bool) {
	return n.children.Get(name)
}

// Children yields direct children in insertion order.
func (n *Namespace) Children() iter.Seq2[string, Node] {
	return n.children.AllFromFront()
}

// Len returns the number of direct children.
func (n *Namespace) Len() int {
	return n.children.Len()
}

// Walk visits every variable below n in depth-first insertion order.
func (n *Namespace) Walk() iter.Seq[*Variable] {
	return func(yield func(*Variable) bool) {
		n.walk(yield)
	}
}

func (n *Namespace) walk(yield func(*Variable) bool) bool {
	for _, child := range n.children.AllFromFront() {
		switch c := child.(type) {
		case *Namespace:
			if !c.walk(yield) {
				return false
			}
		case *Variable:
			if !yield(c) {
				return false
			}
		}
	}
	return true
}

// insert binds v under its path, creating namespaces as needed. A leaf
// and a namespace competing for the same segment: the later one wins.
func (n *Namespace) insert(v *Variable) {
	cur := n
	path := v.Path()
	for i, seg := range path[:len(path)-1] {
		if next, ok := cur.children.Get(seg); ok {
			if ns, ok := next.(*Namespace); ok {
				cur = ns
				continue
			}
		}
		ns := newNamespace(path[:i+1 : i+1])
		cur.children.Set(seg, ns)
		cur = ns
	}
	cur.children.Set(path[len(path)-1], v)
}

// Lookup resolves a dotted path with optional bracketed indices, for
// example "MAIN.axes[2].pos" or "GVL.grid[-1,3]". Segments are matched
// against namespaces first; once a variable is reached the remaining
// segments navigate its members and elements.
func (c *Catalog) Lookup(path string) (Node, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	var cur Node = c.root
	for _, st := range steps {
		switch node := cur.(type) {
		case *Namespace:
			if st.index != nil {
				return nil, errors.New(errors.PhaseAccess, errors.KindNotAnArray).
					Path(node.path...).
					Detail("namespace cannot be indexed").
					Build()
			}
			child, ok := node.Child(st.name)
			if !ok {
				return nil, errors.NotFound(errors.PhaseAccess, "symbol", path)
			}
			cur = child
		case *Variable:
			var next *Variable
			if st.index != nil {
				next, err = node.Index(st.index...)
			} else {
				next, err = node.Field(st.name)
			}
			if err != nil {
				return nil, err
			}
			cur = next
		}
	}
	return cur, nil
}

type pathStep struct {
	name  string
	index []int
}

func parsePath(path string) ([]pathStep, error) {
	bad := func(detail string) error {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Detail("path %q: %s", path, detail).
			Build()
	}

	var steps []pathStep
	rest := strings.TrimSpace(path)
	if rest == "" {
		return nil, bad("empty")
	}
	expectName := true
	for rest != "" {
		switch {
		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, bad("unterminated index")
			}
			parts := strings.Split(rest[1:end], ",")
			idx := make([]int, len(parts))
			for i, p := range parts {
				v, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil {
					return nil, bad("index " + strconv.Quote(p))
				}
				idx[i] = v
			}
			if expectName && len(steps) == 0 {
				return nil, bad("index before name")
			}
			steps = append(steps, pathStep{index: idx})
			rest = rest[end+1:]
			expectName = false
		case rest[0] == '.':
			if expectName {
				return nil, bad("empty segment")
			}
			rest = rest[1:]
			expectName = true
			if rest == "" {
				return nil, bad("trailing dot")
			}
		default:
			if !expectName {
				return nil, bad("missing dot before " + strconv.Quote(rest))
			}
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			steps = append(steps, pathStep{name: rest[:end]})
			rest = rest[end:]
			expectName = false
		}
	}
	return steps, nil
}
