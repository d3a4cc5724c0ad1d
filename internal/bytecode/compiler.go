package bytecode

import (
	"fmt"
	"strings"

	"ash/internal/ast"
	"ash/internal/hir"
	"ash/internal/value"
)

type local struct {
	name  string
	depth int
}

// target is a loop or breakable block; exits are the jumps to patch once
// its end is known.
type target struct {
	id    ast.ID
	depth int
	exits []int
}

// funcState tracks the locals of the function being compiled. Top-level
// code is compiled with depth 0, where declarations are globals.
type funcState struct {
	locals  []local
	depth   int
	targets []*target
}

type compiler struct {
	chunk *Chunk
	fn    *funcState
	err   error
}

// Compile emits the lowered module as one chunk. The value of a final
// top-level expression statement is kept as the program result. Operands
// that do not fit their encoding abort compilation with an *EncodingError.
func Compile(m *hir.Module) (*Chunk, error) {
	c := &compiler{chunk: NewChunk(), fn: &funcState{}}
	if m == nil {
		c.chunk.WriteOp(OpRet)
		return c.chunk, nil
	}
	result := resultStmt(m.Stmts)
	for i, s := range m.Stmts {
		if i == result {
			c.expr(s.Data.(*hir.ExprStmtData).Expr)
			continue
		}
		c.stmt(s)
		if c.err != nil {
			return nil, c.err
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	if result >= 0 {
		c.chunk.WriteOp(OpRetValue)
	} else {
		c.chunk.WriteOp(OpRet)
	}
	return c.chunk, nil
}

// resultStmt returns the index of the final statement when it is an
// expression statement producing a value, or -1.
func resultStmt(stmts []*hir.Stmt) int {
	if len(stmts) == 0 {
		return -1
	}
	last := stmts[len(stmts)-1]
	d, ok := last.Data.(*hir.ExprStmtData)
	if !ok || d.Expr.Ty.IsVoid() || !d.Expr.Ty.IsValid() {
		return -1
	}
	return len(stmts) - 1
}

func (c *compiler) fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

func (c *compiler) stmts(list []*hir.Stmt) {
	for _, s := range list {
		if c.err != nil {
			return
		}
		c.stmt(s)
	}
}

func (c *compiler) stmt(s *hir.Stmt) {
	switch d := s.Data.(type) {
	case *hir.FunctionData:
		c.function(d)
	case *hir.VarDeclData:
		c.expr(d.Value)
		if c.fn.depth == 0 {
			c.fail(c.chunk.WriteIndexed(OpDefGlobal, c.chunk.Name(d.Name)))
			c.chunk.Symbols[d.Name] = sourceName(d.Name)
			return
		}
		c.fn.locals = append(c.fn.locals, local{name: d.Name, depth: c.fn.depth})
	case *hir.AssignData:
		c.expr(d.Value)
		if slot, ok := c.resolveLocal(d.Name); ok {
			c.fail(c.chunk.WriteIndexed(OpStoreLocal, slot))
			return
		}
		c.fail(c.chunk.WriteIndexed(OpStoreGlobal, c.chunk.Name(d.Name)))
	case *hir.ReturnData:
		if d.Value == nil {
			c.chunk.WriteOp(OpRet)
			return
		}
		c.expr(d.Value)
		c.chunk.WriteOp(OpRetValue)
	case *hir.ExprStmtData:
		c.expr(d.Expr)
		if !d.Expr.Ty.IsVoid() {
			c.chunk.WriteOp(OpPop)
		}
	case *hir.IfData:
		c.ifStmt(d)
	case *hir.WhileData:
		c.while(d)
	case *hir.BlockData:
		if !d.Target.IsValid() {
			c.scoped(d.Body)
			return
		}
		t := c.pushTarget(d.Target)
		c.scoped(d.Body)
		c.popTarget(t)
	case *hir.BreakData:
		c.breakStmt(d)
	default:
		panic(fmt.Sprintf("bytecode: unexpected statement %T", s.Data))
	}
}

// function emits Fun followed by the body. The body is compiled with its
// own locals, starting with the parameters.
func (c *compiler) function(d *hir.FunctionData) {
	c.fail(c.chunk.WriteIndexed(OpFun, c.chunk.Name(d.Name)))
	c.fail(c.chunk.WriteCount(OpFun, len(d.Params)))
	body := c.chunk.WritePlaceholder()
	c.chunk.Symbols[d.Name] = sourceName(d.Name)

	saved := c.fn
	c.fn = &funcState{depth: 1}
	for _, p := range d.Params {
		c.fn.locals = append(c.fn.locals, local{name: p.Name, depth: 1})
	}
	c.stmts(d.Body)
	if n := len(d.Body); n == 0 || d.Body[n-1].Kind != hir.StmtReturn {
		c.chunk.WriteOp(OpRet)
	}
	c.fn = saved
	c.fail(c.chunk.Patch(OpFun, body))
}

// ifStmt emits every arm as: cond, JmpIfFalse next, Pop, body, Jmp end,
// next: Pop. The jumps to end are patched after the else body.
func (c *compiler) ifStmt(d *hir.IfData) {
	var ends []int
	for _, arm := range d.Arms {
		c.expr(arm.Cond)
		next := c.chunk.WriteJump(OpJmpIfFalse)
		c.chunk.WriteOp(OpPop)
		c.scoped(arm.Body)
		ends = append(ends, c.chunk.WriteJump(OpJmp))
		c.fail(c.chunk.Patch(OpJmpIfFalse, next))
		c.chunk.WriteOp(OpPop)
	}
	if len(d.Else) > 0 {
		c.scoped(d.Else)
	}
	for _, end := range ends {
		c.fail(c.chunk.Patch(OpJmp, end))
	}
}

func (c *compiler) while(d *hir.WhileData) {
	start := c.chunk.Len()
	c.expr(d.Cond)
	exit := c.chunk.WriteJump(OpJmpIfFalse)
	c.chunk.WriteOp(OpPop)
	t := c.pushTarget(d.ID)
	c.scoped(d.Body)
	c.fail(c.chunk.WriteLoop(start))
	c.fail(c.chunk.Patch(OpJmpIfFalse, exit))
	c.chunk.WriteOp(OpPop)
	c.popTarget(t)
}

// breakStmt pops the locals declared inside the target and jumps past its
// end. The locals stay tracked: code after the break in the same scope is
// still compiled against them.
func (c *compiler) breakStmt(d *hir.BreakData) {
	var t *target
	for i := len(c.fn.targets) - 1; i >= 0; i-- {
		if c.fn.targets[i].id == d.Target {
			t = c.fn.targets[i]
			break
		}
	}
	if t == nil {
		panic(fmt.Sprintf("bytecode: break to unknown target %d", d.Target))
	}
	for i := len(c.fn.locals) - 1; i >= 0 && c.fn.locals[i].depth > t.depth; i-- {
		c.chunk.WriteOp(OpPop)
	}
	t.exits = append(t.exits, c.chunk.WriteJump(OpJmp))
}

func (c *compiler) pushTarget(id ast.ID) *target {
	t := &target{id: id, depth: c.fn.depth}
	c.fn.targets = append(c.fn.targets, t)
	return t
}

func (c *compiler) popTarget(t *target) {
	c.fn.targets = c.fn.targets[:len(c.fn.targets)-1]
	for _, exit := range t.exits {
		c.fail(c.chunk.Patch(OpJmp, exit))
	}
}

// scoped compiles body one scope deeper and pops its locals on exit.
func (c *compiler) scoped(body []*hir.Stmt) {
	c.fn.depth++
	c.stmts(body)
	c.fn.depth--
	n := len(c.fn.locals)
	for n > 0 && c.fn.locals[n-1].depth > c.fn.depth {
		c.chunk.WriteOp(OpPop)
		n--
	}
	c.fn.locals = c.fn.locals[:n]
}

func (c *compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.fn.locals) - 1; i >= 0; i-- {
		if c.fn.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

var binaryOps = map[ast.BinaryOp]Opcode{
	ast.BinaryAdd:  OpSum,
	ast.BinarySub:  OpSub,
	ast.BinaryMul:  OpMul,
	ast.BinaryDiv:  OpDiv,
	ast.BinaryRem:  OpRem,
	ast.BinaryEq:   OpEq,
	ast.BinaryNeq:  OpNeq,
	ast.BinaryLt:   OpLt,
	ast.BinaryGt:   OpGt,
	ast.BinaryLtEq: OpLte,
	ast.BinaryGtEq: OpGte,
}

func (c *compiler) expr(e *hir.Expr) {
	switch d := e.Data.(type) {
	case *hir.LiteralData:
		c.literal(d.Value)
	case *hir.VariableData:
		if slot, ok := c.resolveLocal(d.Name); ok {
			c.fail(c.chunk.WriteIndexed(OpLoadLocal, slot))
			return
		}
		c.fail(c.chunk.WriteIndexed(OpLoadGlobal, c.chunk.Name(d.Name)))
	case *hir.CallData:
		for _, a := range d.Args {
			c.expr(a)
		}
		c.fail(c.chunk.WriteIndexed(OpCall, c.chunk.Name(d.Name)))
		c.fail(c.chunk.WriteCount(OpCall, len(d.Args)))
	case *hir.UnaryData:
		c.expr(d.Operand)
		if d.Op == ast.UnaryNeg {
			c.chunk.WriteOp(OpNeg)
		} else {
			c.chunk.WriteOp(OpNot)
		}
	case *hir.BinaryData:
		switch d.Op {
		case ast.BinaryAnd:
			c.and(d)
			return
		case ast.BinaryOr:
			c.or(d)
			return
		}
		c.expr(d.Left)
		c.expr(d.Right)
		op, ok := binaryOps[d.Op]
		if !ok {
			panic(fmt.Sprintf("bytecode: unexpected operator %s", d.Op))
		}
		c.chunk.WriteOp(op)
	default:
		panic(fmt.Sprintf("bytecode: unexpected expression %T", e.Data))
	}
}

func (c *compiler) literal(v value.Value) {
	if v.Kind == value.KindBool {
		if v.Bool {
			c.chunk.WriteOp(OpTrue)
		} else {
			c.chunk.WriteOp(OpFalse)
		}
		return
	}
	c.fail(c.chunk.WriteIndexed(OpConst, c.chunk.AddConstant(v)))
}

// and leaves a false left operand on the stack without evaluating the
// right one.
func (c *compiler) and(d *hir.BinaryData) {
	c.expr(d.Left)
	end := c.chunk.WriteJump(OpJmpIfFalse)
	c.chunk.WriteOp(OpPop)
	c.expr(d.Right)
	c.fail(c.chunk.Patch(OpJmpIfFalse, end))
}

// or leaves a true left operand on the stack without evaluating the right
// one.
func (c *compiler) or(d *hir.BinaryData) {
	c.expr(d.Left)
	right := c.chunk.WriteJump(OpJmpIfFalse)
	end := c.chunk.WriteJump(OpJmp)
	c.fail(c.chunk.Patch(OpJmpIfFalse, right))
	c.chunk.WriteOp(OpPop)
	c.expr(d.Right)
	c.fail(c.chunk.Patch(OpJmp, end))
}

// sourceName strips the unique suffix added by lowering.
func sourceName(mangled string) string {
	if i := strings.LastIndexByte(mangled, '$'); i > 0 {
		return mangled[:i]
	}
	return mangled
}
