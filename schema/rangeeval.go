package schema

import (
	"math"
	"regexp"

	"github.com/expr-lang/expr"
)

// This file implements the Range Evaluator (spec.md §4.3) on top of
// github.com/expr-lang/expr rather than a hand-rolled recursive-descent
// parser. expr-lang is pulled into this module from the retrieval pack
// (other_examples/manifests/wudi-gateway's go.mod uses it for the same
// class of problem: a small expression DSL evaluated against a variable
// map), per this project's policy of preferring a real ecosystem
// dependency over hand-rolled parsing.

// identifierPattern matches bare identifiers in an expression string, used
// to pre-check that every symbol referenced actually resolves in defines.
// expr-lang's map-typed environments otherwise resolve an unknown key to
// the map's zero value rather than erroring, which would silently turn an
// unresolved identifier into 0 -- acceptable for flag expressions (spec.md
// says so explicitly) but not for range/default evaluation.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// evalRange evaluates an arithmetic expression (integer literals,
// identifiers bound through defines, and + - * / % with standard
// precedence and parenthesization) to an int64. Division/modulo by zero
// and unresolved identifiers are reported as *RangeError.
func evalRange(source string, defines map[string]int64) (int64, error) {
	for _, id := range identifierPattern.FindAllString(source, -1) {
		if _, ok := defines[id]; !ok {
			return 0, rangeErrorf("unresolved identifier %q in expression %q", id, source)
		}
	}

	env := make(map[string]any, len(defines))
	for k, v := range defines {
		env[k] = v
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return 0, rangeErrorf("invalid expression %q: %v", source, err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return 0, rangeErrorf("evaluating %q: %v", source, err)
	}

	// expr-lang's "/" always yields a float64: a zero divisor shows up as
	// an infinite or NaN result, and any other quotient is truncated.
	switch v := out.(type) {
	case int:
		out = int64(v)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, rangeErrorf("division by zero in expression %q", source)
		}

		out = int64(v)
	}

	result, ok := out.(int64)
	if !ok {
		return 0, rangeErrorf("expression %q did not evaluate to an integer", source)
	}

	return result, nil
}

// parseRangeEndpoints splits a "LO..HI" range string and evaluates both
// endpoints through evalRange.
func parseRangeEndpoints(rng string, defines map[string]int64) (lo, hi int64, err error) {
	loStr, hiStr, ok := splitRange(rng)
	if !ok {
		return 0, 0, rangeErrorf("malformed range %q", rng)
	}

	lo, err = evalRange(loStr, defines)
	if err != nil {
		return 0, 0, err
	}

	hi, err = evalRange(hiStr, defines)
	if err != nil {
		return 0, 0, err
	}

	return lo, hi, nil
}

func splitRange(rng string) (lo, hi string, ok bool) {
	for i := 0; i+1 < len(rng); i++ {
		if rng[i] == '.' && rng[i+1] == '.' {
			return rng[:i], rng[i+2:], true
		}
	}

	return "", "", false
}
