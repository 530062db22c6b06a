// Package ast defines the syntax tree of the business rule language (BRL).
//
// A RuleFile holds declarations: constraints and actions bound to a context
// element (ContextDecl), multi-context fragments whose contexts are all
// parameters (MultiContextDecl), rule sets (RuleSet) and file-level global
// variables (GlobalVar).
//
// Every PathExpr starts out unresolved. Semantic resolution fills in its
// Resolution, and likewise the Element, Type and Operator fields of
// parameters, casts, type tests and operator calls. A failed resolution
// leaves the field nil so that a later pass may retry.
//
// Walk performs a depth-first traversal with paired VisitBefore/VisitAfter
// callbacks. VisitAfter always runs, which lets a visitor keep scope stacks
// balanced even when it declines to descend.
package ast
