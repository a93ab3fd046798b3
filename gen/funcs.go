package gen

import (
	"fmt"
	"strings"
	"text/template"

	"go.l1config.dev/compiler/schema"
)

// funcMap builds the text/template FuncMap bound to m, exposing the model
// query surface (schema/query.go) and a handful of pure string/arithmetic
// helpers the templates need for C identifier formatting.
func funcMap(m *schema.Model) template.FuncMap {
	return template.FuncMap{
		"fail": raiseError,

		"upper":  strings.ToUpper,
		"add":    func(a, b int) int { return a + b },
		"cIdent": cIdent,

		"userTypes":  m.SortedUserTypeNames,
		"defines":    m.SortedDefineNames,
		"defineOf":   func(name string) schema.Define { return m.Defines[name] },
		"rootStruct": func() string { return m.Root },
		"typeOf":     m.FindType,
		"keyRows":    func() ([]KeyRow, error) { return BuildKeyRows(m) },
		"fieldCType": func(f schema.StructField) string { return fieldCType(m, f) },
		"fieldArraySuffix": func(f schema.StructField) (string, error) {
			return fieldArraySuffix(m, f)
		},

		"isBuiltin": m.IsBuiltin,
		"isNumeric": m.IsNumeric,
		"isKind": func(t *schema.Type, kind string) bool {
			return string(t.Kind) == kind
		},
		"fullType":        m.GetFullType,
		"getterFunc":      m.GetGetterFunc,
		"hasChecker":      m.HasCheckerFunc,
		"checkerFunc":     m.GetCheckerFunc,
		"enumNumbers":     m.EnumValueNumbers,
		"nbKeys":          m.GetNbKeys,
		"nbRootSections":  m.GetNbRootKeySections,
		"sizeMacro":       m.ItemizedSizeMacro,
		"itemizedSize":    m.GetItemizedSize,
		"enumIndexNames":  m.EnumIndexNames,
		"itemizedIndexes": m.GetItemizedIndexList,
		"isEnumIndexes":   m.IsItemizedIndexesEnum,

		"structFields": func(t *schema.Type) []schema.StructField {
			if t.Kind != schema.KindStruct {
				return nil
			}

			return t.Struct.Fields
		},
		"enumValues": func(t *schema.Type) []schema.EnumValue {
			if t.Kind != schema.KindEnum {
				return nil
			}

			return t.Enum.Values
		},
		"bitFieldBits": func(t *schema.Type) []schema.BitFieldBits {
			if t.Kind != schema.KindBitField {
				return nil
			}

			return t.BitField.Bits
		},
	}
}

// cIdent rewrites a dotted, bracketed key path (e.g. "radio[CH0].power")
// into a valid upper-snake-case C identifier fragment
// ("RADIO_CH0_POWER"): each run of characters other than letters and
// digits becomes a single underscore.
func cIdent(path string) string {
	var b strings.Builder

	b.Grow(len(path))

	prevSep := false

	for _, r := range strings.ToUpper(path) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)

			prevSep = false
		case !prevSep:
			b.WriteByte('_')

			prevSep = true
		}
	}

	return b.String()
}

// raiseError lets a template abort generation with a specific message: a
// template action of the form {{ fail "message" }} makes Execute return
// that error immediately.
func raiseError(format string, args ...any) (string, error) {
	return "", fmt.Errorf(format, args...)
}
