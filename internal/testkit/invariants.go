// Package testkit holds structural checks shared by package tests.
package testkit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"ash/internal/ast"
	"ash/internal/hir"
	"ash/internal/source"
	"ash/internal/types"
)

// CheckSpanInvariants runs span checks on a parsed file:
// 1) file.Span lies within the file content
// 2) every top-level statement span is non-empty, points at sf and lies
// inside file.Span
// 3) file.Span covers the union of statement spans
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return errors.New("nil file")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of length %d", f.Span, lenContent)
	}

	var union source.Span
	for i, s := range f.Stmts {
		sp := s.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty span for statement %d: %v", i, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("statement %d span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if !f.Span.Contains(sp) {
			return fmt.Errorf("statement span %v is outside file span %v", sp, f.Span)
		}
		if i == 0 {
			union = sp
		} else {
			union = union.Cover(sp)
		}
	}
	if len(f.Stmts) > 0 && !f.Span.Contains(union) {
		return fmt.Errorf("file span %v does not cover union of statements %v", f.Span, union)
	}
	return nil
}

// CheckLowered verifies the shape the bytecode compiler relies on:
// functions only at top level, returns only inside functions, every break
// inside the loop or block it targets, Bool conditions, and no expression
// left with an invalid or deferred type.
func CheckLowered(m *hir.Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	c := &lowered{}
	return c.stmts(m.Stmts, true)
}

type lowered struct {
	targets []ast.ID
	inFunc  bool
}

func (c *lowered) stmts(list []*hir.Stmt, top bool) error {
	for _, s := range list {
		if err := c.stmt(s, top); err != nil {
			return err
		}
	}
	return nil
}

func (c *lowered) stmt(s *hir.Stmt, top bool) error {
	switch d := s.Data.(type) {
	case *hir.FunctionData:
		if !top || c.inFunc {
			return fmt.Errorf("function %s is not at top level", d.Name)
		}
		c.inFunc = true
		saved := c.targets
		c.targets = nil
		err := c.stmts(d.Body, false)
		c.inFunc, c.targets = false, saved
		return err
	case *hir.VarDeclData:
		return c.expr(d.Value)
	case *hir.AssignData:
		return c.expr(d.Value)
	case *hir.ReturnData:
		if !c.inFunc {
			return errors.New("return outside of a function")
		}
		if d.Value == nil {
			return nil
		}
		return c.expr(d.Value)
	case *hir.ExprStmtData:
		return c.expr(d.Expr)
	case *hir.IfData:
		if len(d.Arms) == 0 {
			return errors.New("if without arms")
		}
		for _, arm := range d.Arms {
			if err := c.condition(arm.Cond); err != nil {
				return err
			}
			if err := c.stmts(arm.Body, false); err != nil {
				return err
			}
		}
		return c.stmts(d.Else, false)
	case *hir.WhileData:
		if err := c.condition(d.Cond); err != nil {
			return err
		}
		return c.scoped(d.ID, d.Body)
	case *hir.BlockData:
		return c.scoped(d.Target, d.Body)
	case *hir.BreakData:
		for i := len(c.targets) - 1; i >= 0; i-- {
			if c.targets[i] == d.Target {
				return nil
			}
		}
		return fmt.Errorf("break to target %d outside of it", d.Target)
	}
	return fmt.Errorf("unexpected statement %s", s.Kind)
}

func (c *lowered) scoped(target ast.ID, body []*hir.Stmt) error {
	c.targets = append(c.targets, target)
	err := c.stmts(body, false)
	c.targets = c.targets[:len(c.targets)-1]
	return err
}

func (c *lowered) condition(e *hir.Expr) error {
	if err := c.expr(e); err != nil {
		return err
	}
	if !e.Ty.Equal(types.Bool) {
		return fmt.Errorf("condition of type %s", e.Ty)
	}
	return nil
}

func (c *lowered) expr(e *hir.Expr) error {
	if e == nil {
		return errors.New("missing expression")
	}
	if !e.Ty.IsValid() || types.ContainsDeferred(e.Ty) {
		return fmt.Errorf("%s expression with unresolved type %s", e.Kind, e.Ty)
	}
	switch d := e.Data.(type) {
	case *hir.CallData:
		for _, a := range d.Args {
			if err := c.expr(a); err != nil {
				return err
			}
		}
	case *hir.UnaryData:
		return c.expr(d.Operand)
	case *hir.BinaryData:
		if err := c.expr(d.Left); err != nil {
			return err
		}
		return c.expr(d.Right)
	}
	return nil
}
