// Package symbols holds the per-compilation symbol context and the resolver
// that binds every reference to its declaration.
package symbols

import (
	"ash/internal/ast"
	"ash/internal/source"
	"ash/internal/types"
)

// Flags encode misc attributes of a record for quick checks.
type Flags uint16

const (
	FlagMutable Flags = 1 << iota
	FlagGlobal
	FlagFunction
	FlagParam
	FlagBuiltin
	FlagNoMangle
	// FlagTarget marks loops, value blocks and if-arms that a break can leave.
	FlagTarget
)

// Strings returns a slice of textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	names := [...]string{"mutable", "global", "function", "param", "builtin", "nomangle", "target"}
	for i, name := range names {
		if f&(1<<i) != 0 {
			labels = append(labels, name)
		}
	}
	return labels
}

// Record is the symbol context entry for one ID. A reference has PointsTo
// set and usually no type: its type is whatever PointsTo resolves to.
type Record struct {
	Name     string
	Ty       types.Ty // Invalid when not known yet
	PointsTo ast.ID
	Depth    int
	Flags    Flags
	// Mangled is the globally unique name assigned during lowering.
	Mangled string
	Span    source.Span
	present bool
}

func (r *Record) Has(f Flags) bool { return r != nil && r.Flags&f == f }

// VarNode tracks the globals a top-level declaration depends on. Functions
// get nodes too, so an initializer calling a function inherits what the
// function reads.
type VarNode struct {
	ID       ast.ID
	Name     string
	Span     source.Span
	Function bool
	Init     *ast.Expr // initializer snapshot; nil for functions
	Deps     []ast.ID
}

func (n *VarNode) dependsOn(id ast.ID) bool {
	for _, d := range n.Deps {
		if d == id {
			return true
		}
	}
	return false
}

// Context is an arena of records indexed by ID. It is owned by a single
// compilation: the resolver and the type checker write it in sequence, later
// stages only read.
type Context struct {
	records []Record
	nodes   map[ast.ID]*VarNode
	order   []ast.ID
}

// NewContext allocates a context; hint is the expected largest ID.
func NewContext(hint uint32) *Context {
	if hint == 0 {
		hint = 64
	}
	return &Context{
		records: make([]Record, 0, hint+1),
		nodes:   make(map[ast.ID]*VarNode),
	}
}

func (c *Context) slot(id ast.ID) *Record {
	if int(id) >= len(c.records) {
		grown := make([]Record, int(id)+1, 2*(int(id)+1))
		copy(grown, c.records)
		c.records = grown
	}
	return &c.records[id]
}

// Declare stores the record for a binding site or break target.
func (c *Context) Declare(id ast.ID, rec Record) {
	if !id.IsValid() {
		return
	}
	rec.present = true
	*c.slot(id) = rec
}

// Bind points the reference ref at target.
func (c *Context) Bind(ref, target ast.ID) {
	if !ref.IsValid() {
		return
	}
	r := c.slot(ref)
	r.present = true
	r.PointsTo = target
}

// Get returns the record for id or nil if nothing was recorded.
func (c *Context) Get(id ast.ID) *Record {
	if !id.IsValid() || int(id) >= len(c.records) || !c.records[id].present {
		return nil
	}
	return &c.records[id]
}

// Len reports the number of recorded IDs.
func (c *Context) Len() int {
	n := 0
	for i := range c.records {
		if c.records[i].present {
			n++
		}
	}
	return n
}

// Target follows the PointsTo chain of id and returns the declaration it
// ends at. Self-pointing records and cycles end the walk.
func (c *Context) Target(id ast.ID) ast.ID {
	seen := make(map[ast.ID]struct{}, 2)
	for {
		rec := c.Get(id)
		if rec == nil || !rec.PointsTo.IsValid() || rec.PointsTo == id {
			return id
		}
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
		id = rec.PointsTo
	}
}

// Decl returns the declaration record a reference resolves to.
func (c *Context) Decl(id ast.ID) *Record {
	return c.Get(c.Target(id))
}

// TypeOf follows the PointsTo chain until a record carries a type.
func (c *Context) TypeOf(id ast.ID) (types.Ty, bool) {
	seen := make(map[ast.ID]struct{}, 2)
	for {
		rec := c.Get(id)
		if rec == nil {
			return types.Invalid, false
		}
		if rec.Ty.IsValid() {
			return rec.Ty, true
		}
		if !rec.PointsTo.IsValid() || rec.PointsTo == id {
			return types.Invalid, false
		}
		if _, ok := seen[id]; ok {
			return types.Invalid, false
		}
		seen[id] = struct{}{}
		id = rec.PointsTo
	}
}

// SetType records the type of a declaration.
func (c *Context) SetType(id ast.ID, ty types.Ty) {
	if rec := c.Get(id); rec != nil {
		rec.Ty = ty
	}
}

// SetMangled records the unique name of a declaration.
func (c *Context) SetMangled(id ast.ID, name string) {
	if rec := c.Get(id); rec != nil {
		rec.Mangled = name
	}
}

// NameOf returns the name a reference or declaration should be emitted as:
// the mangled name when one was assigned, the source name otherwise.
func (c *Context) NameOf(id ast.ID) string {
	rec := c.Decl(id)
	if rec == nil {
		return ""
	}
	if rec.Mangled != "" {
		return rec.Mangled
	}
	return rec.Name
}

func (c *Context) addNode(n *VarNode) {
	if _, ok := c.nodes[n.ID]; !ok {
		c.order = append(c.order, n.ID)
	}
	c.nodes[n.ID] = n
}

// Node returns the dependency node of a top-level declaration.
func (c *Context) Node(id ast.ID) *VarNode {
	return c.nodes[id]
}

// Nodes returns every dependency node in declaration order.
func (c *Context) Nodes() []*VarNode {
	out := make([]*VarNode, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

// DropNodes discards the dependency graph once globals have been ordered.
func (c *Context) DropNodes() {
	c.nodes = make(map[ast.ID]*VarNode)
	c.order = nil
}
