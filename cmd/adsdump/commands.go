package main

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/spf13/cobra"

	"github.com/wippyai/ads-symbols/catalog"
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/layout"
	"github.com/wippyai/ads-symbols/nzarray"
)

type treeNode struct {
	Name        string      `json:"name"`
	Path        string      `json:"path,omitempty"`
	Type        string      `json:"type,omitempty"`
	Layout      string      `json:"layout,omitempty"`
	Error       string      `json:"error,omitempty"`
	Children    []*treeNode `json:"children,omitempty"`
	IndexGroup  uint32      `json:"index_group,omitempty"`
	IndexOffset uint32      `json:"index_offset,omitempty"`
	Size        uint32      `json:"size,omitempty"`
	Variable    bool        `json:"variable"`
}

func buildTree(n catalog.Node, depth int) *treeNode {
	switch n := n.(type) {
	case *catalog.Namespace:
		t := &treeNode{Name: n.Name()}
		for _, child := range n.Children() {
			t.Children = append(t.Children, buildTree(child, depth))
		}
		return t

	case *catalog.Variable:
		info := n.Describe()
		t := &treeNode{
			Name:        n.Name(),
			Path:        info.FullName,
			Type:        info.TypeName,
			IndexGroup:  info.IndexGroup,
			IndexOffset: info.IndexOffset,
			Size:        info.Size,
			Variable:    true,
		}
		if info.LayoutErr != nil {
			t.Error = info.LayoutErr.Error()
			return t
		}
		t.Layout = info.Layout.String()
		if depth > 0 {
			if it, err := n.Iter(); err == nil {
				for _, child := range it {
					t.Children = append(t.Children, buildTree(child, depth-1))
				}
			}
		}
		return t
	}
	return nil
}

func (p *printer) printTree(t *treeNode, depth int) {
	if !t.Variable {
		if t.Name != "" {
			p.line(depth, p.paint(nameStyle, t.Name+"/"))
			depth++
		}
		for _, c := range t.Children {
			p.printTree(c, depth)
		}
		return
	}

	addr := p.paint(addrStyle, fmt.Sprintf("@0x%X:0x%X [%d]", t.IndexGroup, t.IndexOffset, t.Size))
	if t.Error != "" {
		p.line(depth, p.paint(nameStyle, t.Name), p.paint(typeStyle, t.Type), addr, p.paint(errorStyle, "unresolved"))
	} else {
		p.line(depth, p.paint(nameStyle, t.Name), p.paint(typeStyle, t.Type), addr)
	}
	for _, c := range t.Children {
		p.printTree(c, depth+1)
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree [PATH]",
		Short: "Print the variable tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var node catalog.Node = a.cat.Root()
			if len(args) == 1 {
				var err error
				if node, err = a.cat.Lookup(args[0]); err != nil {
					return err
				}
			}
			t := buildTree(node, depth)
			if a.out.json {
				return a.out.emit(t)
			}
			a.out.printTree(t, 0)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "expand members and elements of variables this many levels")
	return cmd
}

type typeEntry struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Layout  string `json:"layout"`
	Kind    string `json:"kind"`
	Comment string `json:"comment,omitempty"`
	Size    uint32 `json:"size"`
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the data type table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []typeEntry
			for _, name := range a.cat.DataTypeNames() {
				rec, _ := a.cat.DataType(name)
				l, err := a.cat.Layout(name)
				if err != nil {
					return err
				}
				entries = append(entries, typeEntry{
					Name:    name,
					Type:    rec.Type,
					Layout:  l.String(),
					Kind:    l.Kind.String(),
					Comment: rec.Comment,
					Size:    rec.Size,
				})
			}
			if a.out.json {
				return a.out.emit(entries)
			}
			for _, e := range entries {
				a.out.line(0, a.out.paint(nameStyle, e.Name), a.out.paint(typeStyle, e.Layout),
					a.out.paint(addrStyle, fmt.Sprintf("[%d]", e.Size)))
			}
			return nil
		},
	}
}

type layoutEntry struct {
	Elem    *layoutEntry   `json:"elem,omitempty"`
	Name    string         `json:"name,omitempty"`
	Kind    string         `json:"kind"`
	Type    string         `json:"type"`
	Fields  []*layoutEntry `json:"fields,omitempty"`
	Offset  uint32         `json:"offset"`
	Size    uint32         `json:"size"`
	Align   uint32         `json:"align"`
	Lower   int32          `json:"lower,omitempty"`
	Count   uint32         `json:"count,omitempty"`
	Padding bool           `json:"padding,omitempty"`
}

func describeLayout(l *layout.Layout, name string, offset uint32) *layoutEntry {
	e := &layoutEntry{
		Name:   name,
		Kind:   l.Kind.String(),
		Type:   l.String(),
		Offset: offset,
		Size:   l.Size,
		Align:  l.Align,
	}
	switch l.Kind {
	case layout.KindArray:
		e.Lower, e.Count = l.Lower, l.Count
		e.Elem = describeLayout(l.Elem, "", 0)
	case layout.KindStructure:
		for _, f := range l.Fields {
			fe := describeLayout(f.Layout, f.Name, f.Offset)
			fe.Padding = f.Padding
			e.Fields = append(e.Fields, fe)
		}
	}
	return e
}

func (p *printer) printLayout(e *layoutEntry, depth int) {
	name := e.Name
	if e.Padding {
		name = "(padding)"
	}
	p.line(depth,
		p.paint(addrStyle, fmt.Sprintf("+%d", e.Offset)),
		p.paint(nameStyle, name),
		p.paint(typeStyle, e.Type),
		p.paint(addrStyle, fmt.Sprintf("[%d, align %d]", e.Size, e.Align)))
	for _, f := range e.Fields {
		p.printLayout(f, depth+1)
	}
	if e.Elem != nil && e.Elem.Kind == layout.KindStructure.String() {
		p.printLayout(e.Elem, depth+1)
	}
}

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout NAME",
		Short: "Print the synthesized layout of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.cat.Layout(args[0])
			if err != nil {
				return err
			}
			e := describeLayout(l, args[0], 0)
			if a.out.json {
				return a.out.emit(e)
			}
			a.out.printLayout(e, 0)
			return nil
		},
	}
}

func newDiagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diag",
		Short: "List types that could not be laid out exactly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diags := a.cat.Diagnostics()
			if a.out.json {
				type entry struct {
					Type   string `json:"type"`
					Kind   string `json:"kind"`
					Detail string `json:"detail"`
				}
				out := make([]entry, len(diags))
				for i, d := range diags {
					out[i] = entry{Type: d.Type, Kind: string(d.Kind), Detail: d.Detail}
				}
				return a.out.emit(out)
			}
			for _, d := range diags {
				a.out.line(0, a.out.paint(nameStyle, d.Type), a.out.paint(errorStyle, string(d.Kind)), d.Detail)
			}
			return nil
		},
	}
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read PATH...",
		Short: "Read and print variable values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := orderedmap.NewOrderedMap[string, any]()
			for _, path := range args {
				n, err := a.cat.Lookup(path)
				if err != nil {
					return err
				}
				v, ok := n.(*catalog.Variable)
				if !ok {
					return errors.New(errors.PhaseAccess, errors.KindUnsupported).
						Detail("%s is a namespace", path).
						Build()
				}
				val, err := v.Read(cmd.Context())
				if err != nil {
					return err
				}
				values.Set(v.FullName(), val)
			}

			if a.out.json {
				out := make(map[string]any, values.Len())
				for k, v := range values.AllFromFront() {
					out[k] = jsonValue(v)
				}
				return a.out.emit(out)
			}
			for k, v := range values.AllFromFront() {
				a.out.line(0, a.out.paint(nameStyle, k), "=", a.out.paint(valueStyle, fmt.Sprint(v)))
			}
			return nil
		},
	}
}

// jsonValue converts decoded values into shapes encoding/json handles.
func jsonValue(v any) any {
	switch v := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		out := make(map[string]any, v.Len())
		for k, x := range v.AllFromFront() {
			out[k] = jsonValue(x)
		}
		return out
	case *nzarray.Array[any]:
		vals := make([]any, 0, v.Len())
		for _, x := range v.All() {
			vals = append(vals, jsonValue(x))
		}
		return map[string]any{"lower": v.Lower(), "values": vals}
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = jsonValue(x)
		}
		return out
	}
	return v
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
