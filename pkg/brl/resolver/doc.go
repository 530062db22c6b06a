// Package resolver turns a parsed rule file into a semantically resolved
// one: every path expression is bound to a model attribute, a model
// element, a local variable or a global variable.
//
// # Stages
//
// Resolve runs these stages in order:
//
//  1. Context-free actions receive the model.NoContext sentinel.
//  2. Global variables are bound, before any body is walked.
//  3. Single-context declarations resolve their context and parameter types.
//  4. Multi-context fragments resolve their parameter types.
//  5. Each eligible declaration body is walked with a fresh Scope.
//  6. Rule-set preconditions are walked the same way.
//  7. Operator invocations are bound to catalogue entries.
//  8. Existence statements that restate their context are rewritten away.
//
// A declaration whose context or parameters fail to resolve is skipped at
// stage 5 or 6, so its body produces no follow-up errors.
//
// # Name lookup
//
// The first step of a path is looked up in five tiers, first match wins:
// an attribute of the current navigation context (only while it differs
// from the declaration's own context), an attribute of the declaration's
// own context, a primitive or model element ("::" qualification allowed),
// a variable in scope, and a global variable. Later steps are attributes
// of the previous step's type.
//
// # Scopes
//
// Scope holds a navigation-context stack and a variable frame stack. Every
// push returns a Guard; the walker releases it in VisitAfter of the node
// that pushed it, and a guard released out of order panics. After each body
// both stacks are back at their seeded depth.
//
// Resolution is best effort. Errors accumulate in one list per run and the
// tree is usable by later passes whatever the outcome.
package resolver
