package schema

import "github.com/expr-lang/expr"

// evalFlag evaluates a flag expression against defines: either a bare
// define name, treated as truthy when nonzero (spec.md's shorthand
// `flag: "FEAT"`), or a full boolean expression using expr-lang's native
// and/or/not plus comparisons. Symbols absent from defines are bound to 0
// before compilation, per spec.md §4.1 -- unlike evalRange, an unresolved
// identifier is not an error here. The compiled result is not
// type-checked against bool (expr.AsBool would reject the bare
// int-valued shorthand), so the runtime result is coerced: a bool is
// used as-is, an integer is truthy when nonzero.
func evalFlag(source string, defines map[string]int64) (bool, error) {
	env := make(map[string]any, len(defines))
	for k, v := range defines {
		env[k] = v
	}

	for _, id := range identifierPattern.FindAllString(source, -1) {
		if _, ok := env[id]; !ok {
			if _, isKeyword := flagKeywords[id]; !isKeyword {
				env[id] = int64(0)
			}
		}
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return false, schemaErrorf("invalid expression %s", source)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, schemaErrorf("invalid expression %s", source)
	}

	switch v := out.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, schemaErrorf("invalid expression %s", source)
	}
}

// flagKeywords lists expr-lang's reserved words so the identifier
// pre-scan in evalFlag doesn't try to bind "and"/"or"/"not"/etc. as
// defines.
var flagKeywords = map[string]bool{
	"and": true, "or": true, "not": true,
	"true": true, "false": true, "nil": true,
	"in": true, "matches": true, "contains": true,
}
