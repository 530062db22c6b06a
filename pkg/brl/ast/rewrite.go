package ast

// Rewrite replaces every expression slot below n with f applied to it.
// Slots are rewritten bottom-up, so f sees already rewritten children.
// Path slots typed *PathExpr (quantifier targets, assignment targets) are
// not expression slots and are left alone.
func Rewrite(n Node, f func(Expr) Expr) {
	expr := func(e Expr) Expr {
		if e == nil {
			return nil
		}
		Rewrite(e, f)
		return f(e)
	}
	action := func(a Action) {
		if a != nil {
			Rewrite(a, f)
		}
	}
	body := func(b *ConstraintBody) {
		if b != nil {
			Rewrite(b, f)
		}
	}

	switch x := n.(type) {
	case *RuleFile:
		for _, d := range x.Declarations {
			Rewrite(d, f)
		}
	case *ContextDecl:
		body(x.Precondition)
		body(x.Constraint)
		action(x.Action)
	case *MultiContextDecl:
		body(x.Precondition)
		body(x.Constraint)
		action(x.Action)
	case *RuleSet:
		body(x.Precondition)
	case *GlobalVar:
		if x.Decl != nil {
			Rewrite(x.Decl, f)
		}
	case *ConstraintBody:
		for _, l := range x.Lets {
			Rewrite(l, f)
		}
		x.Condition = expr(x.Condition)
	case *VarDecl:
		x.Value = expr(x.Value)
	case *Binary:
		x.Left = expr(x.Left)
		x.Right = expr(x.Right)
	case *Unary:
		x.Operand = expr(x.Operand)
	case *Existence:
		x.Condition = expr(x.Condition)
	case *Universal:
		x.Condition = expr(x.Condition)
	case *NumberOf:
		x.Condition = expr(x.Condition)
	case *Selection:
		x.Condition = expr(x.Condition)
	case *Cast:
		x.Operand = expr(x.Operand)
	case *TypeTest:
		x.Operand = expr(x.Operand)
	case *OperatorCall:
		for i, a := range x.Args {
			x.Args[i] = expr(a)
		}
	case *Compound:
		for _, a := range x.Actions {
			action(a)
		}
	case *ForEach:
		action(x.Body)
	case *Create:
		action(x.Body)
	case *Remove:
		x.Condition = expr(x.Condition)
	case *Assign:
		x.Value = expr(x.Value)
	case *If:
		x.Condition = expr(x.Condition)
		action(x.Then)
		action(x.Else)
	case *OperatorAction:
		for i, a := range x.Args {
			x.Args[i] = expr(a)
		}
	}
}
