package schema

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/parser"
)

// builtinNumericDoc is the Doc attached to every injected native numeric
// type, so generated accessors still have something to print.
func builtinNumericDoc(width NumericWidth) Doc {
	return Doc{Summary: fmt.Sprintf("native %s value", width)}
}

// injectBuiltins adds the eight native integer widths and bool as ordinary
// named Types, so that a custom-ref struct field can name "uint8_t" or
// "bool" exactly like any user-declared type. User schemas never declare
// these directly: the "type" tag IS the discriminator for them (see
// parseType), so a user-declared type named "uint8_t" would simply be
// overwritten here -- callers are expected not to do that.
func injectBuiltins(m *Model) {
	for tag, width := range numericWidthTags {
		m.Types[tag] = &Type{
			Name:    tag,
			Kind:    kindForWidth(width),
			Doc:     builtinNumericDoc(width),
			Numeric: &NumericType{Width: width},
		}
	}

	m.Types["bool"] = &Type{
		Name: "bool",
		Kind: KindBool,
		Doc:  Doc{Summary: "native boolean value"},
		Bool: &BoolType{},
	}
}

func kindForWidth(width NumericWidth) Kind {
	if unsignedWidths[width] {
		return KindNumericUnsigned
	}

	return KindNumericSigned
}

// Load parses, prunes, parses the type model, injects the native builtin
// types, and validates input -- spec.md §4's full pipeline. overrides are
// "NAME=VALUE" strings (the -D CLI flag) merged into defines before
// pruning and evaluation, taking precedence over any NAME defined in the
// document itself.
func Load(input []byte, overrides []string) (*Model, error) {
	file, err := parser.ParseBytes(input, parser.ParseComments)
	if err != nil {
		return nil, ioErrorf(err, "parsing input")
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, schemaErrorf("empty document")
	}

	root := file.Docs[0].Body

	anchors := buildAnchorMap(root)

	prelim, err := parseDocument(resolve(root, anchors), anchors)
	if err != nil {
		return nil, err
	}

	defines := prelim.DefineValues()

	for _, ov := range overrides {
		name, val, err := splitOverride(ov)
		if err != nil {
			return nil, err
		}

		defines[name] = val
	}

	pruned, err := pruneFlags(root, anchors, defines)
	if err != nil {
		return nil, err
	}

	m, err := parseDocument(pruned, anchors)
	if err != nil {
		return nil, err
	}

	for name, val := range defines {
		d := m.Defines[name]
		d.Name = name
		d.Value = val
		m.Defines[name] = d
	}

	injectBuiltins(m)

	if err := validate(m); err != nil {
		return nil, err
	}

	m.frozen = true

	return m, nil
}

func splitOverride(ov string) (name string, val int64, err error) {
	parts := strings.SplitN(ov, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, schemaErrorf("malformed override %q, expected NAME=VALUE", ov)
	}

	n, err := evalRange(parts[1], nil)
	if err != nil {
		return "", 0, schemaErrorf("override %q: %v", ov, err)
	}

	return parts[0], n, nil
}
