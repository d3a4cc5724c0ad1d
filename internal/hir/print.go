package hir

import (
	"fmt"
	"io"
	"strings"
)

// Printer is used to dump the lowered tree as text.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the lowered module to the writer.
func Dump(w io.Writer, m *Module) error {
	p := NewPrinter(w)
	return p.PrintModule(m)
}

// String renders the module; used by tests and `ash lower`.
func (m *Module) String() string {
	var sb strings.Builder
	_ = Dump(&sb, m)
	return sb.String()
}

// PrintModule prints every top-level statement.
func (p *Printer) PrintModule(m *Module) error {
	if m.Path != "" {
		p.printf("// %s\n", m.Path)
	}
	p.printStmts(m.Stmts)
	return p.err
}

func (p *Printer) printStmts(list []*Stmt) {
	for _, s := range list {
		p.printStmt(s)
	}
}

func (p *Printer) line(format string, args ...any) {
	p.printf("%s", strings.Repeat("    ", p.indent))
	p.printf(format, args...)
	p.printf("\n")
}

func (p *Printer) nested(header string, body []*Stmt) {
	p.line("%s {", header)
	p.indent++
	p.printStmts(body)
	p.indent--
}

func (p *Printer) printStmt(s *Stmt) {
	switch d := s.Data.(type) {
	case *FunctionData:
		params := make([]string, len(d.Params))
		for i, prm := range d.Params {
			params[i] = fmt.Sprintf("%s: %s", prm.Name, prm.Ty)
		}
		p.nested(fmt.Sprintf("fun %s(%s): %s", d.Name, strings.Join(params, ", "), d.Result), d.Body)
		p.line("}")
	case *VarDeclData:
		kw := "val"
		if d.Mutable {
			kw = "var"
		}
		p.line("%s %s: %s = %s", kw, d.Name, d.Ty, exprString(d.Value))
	case *AssignData:
		p.line("%s = %s", d.Name, exprString(d.Value))
	case *ReturnData:
		if d.Value == nil {
			p.line("return")
			return
		}
		p.line("return %s", exprString(d.Value))
	case *ExprStmtData:
		p.line("%s", exprString(d.Expr))
	case *IfData:
		for i, arm := range d.Arms {
			header := "if " + exprString(arm.Cond)
			if i > 0 {
				header = "} else " + header
			}
			p.nested(header, arm.Body)
		}
		if len(d.Else) > 0 {
			p.nested("} else", d.Else)
		}
		p.line("}")
	case *WhileData:
		p.nested(fmt.Sprintf("while#%d %s", d.ID, exprString(d.Cond)), d.Body)
		p.line("}")
	case *BlockData:
		header := "block"
		if d.Target.IsValid() {
			header = fmt.Sprintf("block#%d", d.Target)
		}
		p.nested(header, d.Body)
		p.line("}")
	case *BreakData:
		p.line("break #%d", d.Target)
	default:
		p.line("<unknown %T>", s.Data)
	}
}

func exprString(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch d := e.Data.(type) {
	case *LiteralData:
		return d.Value.Literal()
	case *VariableData:
		return d.Name
	case *CallData:
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", d.Name, strings.Join(args, ", "))
	case *UnaryData:
		return d.Op.String() + operandString(d.Operand)
	case *BinaryData:
		return operandString(d.Left) + " " + d.Op.String() + " " + operandString(d.Right)
	}
	return fmt.Sprintf("<unknown %T>", e.Data)
}

func operandString(e *Expr) string {
	if e != nil && e.Kind == ExprBinary {
		return "(" + exprString(e) + ")"
	}
	return exprString(e)
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
