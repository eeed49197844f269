package eval

import (
	"fmt"
	"strings"

	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/value"
)

// Closure is naab's user-defined function Value (spec §3's "Function"
// variant): a parameter list, a body, and the environment captured at
// definition time. It is defined here rather than in internal/value because
// holding Body/Env would otherwise force internal/value to import
// internal/ast and internal/eval, creating a cycle.
type Closure struct {
	Name   string // "" for a lambda
	Params []*ast.Param
	Body   *ast.CompoundStmt // set for FuncDecl bodies
	Expr   ast.Expr          // set for LambdaExpr bodies (Body is nil)
	Env    *Environment
}

func (c *Closure) Type() string { return "function" }
func (c *Closure) String() string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name
	}
	if c.Name != "" {
		return fmt.Sprintf("<function %s(%s)>", c.Name, strings.Join(names, ", "))
	}
	return fmt.Sprintf("<lambda(%s)>", strings.Join(names, ", "))
}

var _ value.Value = (*Closure)(nil)
