// Package schema implements the configuration schema compiler's front end:
// a small domain-specific type system for a hierarchical, typed
// configuration tree, its loader/preprocessor, its validator, a symbolic
// range evaluator, and the read-only query surface consumed by the
// template-driven C emitter in package gen.
//
// # Pipeline
//
// [Load] takes raw YAML bytes plus a set of "NAME=VALUE" define overrides
// and produces a frozen, validated [*Model] in four steps:
//
//  1. Parse the input into a YAML AST ([github.com/goccy/go-yaml/ast]) so
//     that key order and anchors/aliases are preserved.
//  2. Walk the AST, injecting the define overrides and pruning any mapping
//     whose "flag" expression evaluates false against the known defines.
//  3. Parse the pruned tree into the [Type] model (pass 1, syntactic).
//  4. Validate all cross-references, ranges, and defaults (pass 2,
//     semantic), after injecting the built-in numeric/bool types.
//
// Once [Load] returns successfully the [*Model] is frozen: every method on
// it is a pure query, safe for concurrent use by the emitter.
package schema
