// Tagged-variant IR for parsed formulas: a node is a Ref, Number, Binary, or
// Call, pre-parsed once and cached so the evaluator never re-parses.

package engine

// exprKind tags which variant an Expr node is.
type exprKind int

const (
	exprNumber exprKind = iota
	exprRef
	exprBinary
	exprUnaryMinus
	exprCall
)

// Expr is a parsed formula node. Exactly one of the type-specific fields is
// meaningful, selected by Kind.
type Expr struct {
	Kind exprKind

	// exprNumber
	Num float64

	// exprRef
	Ref string

	// exprBinary
	Op    string
	Left  *Expr
	Right *Expr

	// exprUnaryMinus
	Operand *Expr

	// exprCall
	Func string
	Args []*Expr
}

func numLit(v float64) *Expr       { return &Expr{Kind: exprNumber, Num: v} }
func refNode(name string) *Expr    { return &Expr{Kind: exprRef, Ref: name} }
func binNode(op string, l, r *Expr) *Expr {
	return &Expr{Kind: exprBinary, Op: op, Left: l, Right: r}
}
func negNode(e *Expr) *Expr { return &Expr{Kind: exprUnaryMinus, Operand: e} }
func callNode(fn string, args []*Expr) *Expr {
	return &Expr{Kind: exprCall, Func: fn, Args: args}
}

// arrayBuiltinNames are the functions classified as array-valued: they
// either require full-vector materialization (non-cluster context) or
// period-advancing accumulator state (cluster context).
var arrayBuiltinNames = map[string]bool{
	"CUMSUM": true, "CUMPROD": true, "CUMSUM_Y": true, "CUMPROD_Y": true,
	"SHIFT": true, "PREVSUM": true, "PREVVAL": true, "COUNT": true,
	"MAXVAL": true, "FWDSUM": true,
}

// scalarBuiltinNames are the plain per-period functions.
var scalarBuiltinNames = map[string]bool{
	"MIN": true, "MAX": true, "ABS": true, "ROUND": true, "IF": true,
	"AND": true, "OR": true, "NOT": true,
}

// IsArrayBuiltin reports whether fn is one of the array-valued primitives.
func IsArrayBuiltin(fn string) bool { return arrayBuiltinNames[fn] }
