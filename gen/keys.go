package gen

import (
	"fmt"
	"strconv"
	"strings"

	"go.l1config.dev/compiler/schema"
)

// KeyRow is one flattened leaf configuration key: a dotted path from the
// root struct down to a single accessor, with everything the getter/
// checker templates need to emit a declaration. Building this table in Go
// rather than in the templates keeps the itemized-expansion and
// struct-recursion logic testable on its own.
type KeyRow struct {
	Path       string
	CType      string
	Default    string
	Getter     string
	HasChecker bool
	Checker    string
}

// BuildKeyRows walks m's root struct and returns one [KeyRow] per leaf key,
// in declaration order, expanding itemized fields into one row per index
// label and recursing into custom-ref fields that name another struct.
func BuildKeyRows(m *schema.Model) ([]KeyRow, error) {
	root := m.FindType(m.Root)
	if root == nil || root.Kind != schema.KindStruct {
		return nil, fmt.Errorf("root %q is not a struct", m.Root)
	}

	var rows []KeyRow

	if err := appendStructRows(m, m.Root, root.Struct, "", &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func appendStructRows(m *schema.Model, structName string, st *schema.StructType, prefix string, rows *[]KeyRow) error {
	for _, f := range st.Fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		if err := appendFieldRows(m, structName, f, path, rows); err != nil {
			return err
		}
	}

	return nil
}

func appendFieldRows(m *schema.Model, structName string, f schema.StructField, path string, rows *[]KeyRow) error {
	if f.Kind == schema.KindItemized {
		labels, err := m.GetItemizedIndexList(f.Itemized.Indexes)
		if err != nil {
			return err
		}

		itemType := m.FindType(f.Itemized.ItemType)
		if itemType == nil {
			return fmt.Errorf("field %q: item_type %q not found", f.Name, f.Itemized.ItemType)
		}

		for _, label := range labels {
			indexedPath := fmt.Sprintf("%s[%s]", path, label)

			if itemType.Kind == schema.KindStruct {
				if err := appendStructRows(m, f.Itemized.ItemType, itemType.Struct, indexedPath, rows); err != nil {
					return err
				}

				continue
			}

			row, err := leafRow(m, structName, f, indexedPath)
			if err != nil {
				return err
			}

			*rows = append(*rows, row)
		}

		return nil
	}

	if f.Kind == schema.KindCustomRef {
		target := m.FindType(f.CustomRef.TypeName)
		if target != nil && target.Kind == schema.KindStruct {
			return appendStructRows(m, f.CustomRef.TypeName, target.Struct, path, rows)
		}
	}

	row, err := leafRow(m, structName, f, path)
	if err != nil {
		return err
	}

	*rows = append(*rows, row)

	return nil
}

func leafRow(m *schema.Model, structName string, f schema.StructField, path string) (KeyRow, error) {
	def, err := fieldDefault(m, f)
	if err != nil {
		return KeyRow{}, fmt.Errorf("field %q: default: %w", path, err)
	}

	row := KeyRow{
		Path:    path,
		CType:   fieldCType(m, f),
		Default: def,
		Getter:  m.GetGetterFunc(structName, &f),
	}

	if m.HasCheckerFunc(&f) {
		row.HasChecker = true
		row.Checker = m.GetCheckerFunc(&f)
	}

	return row, nil
}

// fieldDefault renders a leaf field's resolved default as a C literal
// suitable for the key descriptor table's default_value member, per
// spec.md §4.5's "flat array of key descriptors (type, default, getter,
// checker)". Numeric defaults resolve through defines; bool renders as
// "true"/"false"; a custom-ref to an enum renders the qualified enumerator
// name (matching l1_config_types.h.tmpl's "<Type>_<Value>" spelling) and a
// custom-ref to a numeric or bool type inherits that type's own default;
// an array's default renders as a brace-enclosed initializer list, one
// entry per resolved element. Anything else (a struct or bitfield
// reference, which carries no single scalar default of its own) falls
// back to a zero initializer, mirroring fieldCType's "void" fallback for
// the same unhandled kinds.
func fieldDefault(m *schema.Model, f schema.StructField) (string, error) {
	defines := m.DefineValues()

	switch f.Kind {
	case schema.KindNumericUnsigned, schema.KindNumericSigned:
		v, err := f.Numeric.Default.Resolve(defines)
		if err != nil {
			return "", err
		}

		return strconv.FormatInt(v, 10), nil

	case schema.KindBool:
		return strconv.FormatBool(f.Bool.Default), nil

	case schema.KindArray:
		return arrayDefaultLiteral(m, f.Array, defines)

	case schema.KindCustomRef:
		return customRefDefaultLiteral(m, f.CustomRef, defines)

	default:
		return "{0}", nil
	}
}

// customRefDefaultLiteral renders the default a custom-ref field resolves
// to, per spec.md §3: an enum reference's default is recorded on the
// field itself; any other referenced type's default is inherited from
// that type's own declaration.
func customRefDefaultLiteral(m *schema.Model, ref *schema.CustomRefType, defines map[string]int64) (string, error) {
	target := m.FindType(ref.TypeName)
	if target == nil {
		return "{0}", nil
	}

	switch target.Kind {
	case schema.KindEnum:
		return ref.TypeName + "_" + ref.Default, nil

	case schema.KindNumericUnsigned, schema.KindNumericSigned:
		v, err := target.Numeric.Default.Resolve(defines)
		if err != nil {
			return "", err
		}

		return strconv.FormatInt(v, 10), nil

	case schema.KindBool:
		return strconv.FormatBool(target.Bool.Default), nil

	default:
		return "{0}", nil
	}
}

// arrayDefaultLiteral renders an array field's mandatory (for numeric,
// bool, and enum item types) default as a brace-enclosed C initializer
// list.
func arrayDefaultLiteral(m *schema.Model, a *schema.ArrayType, defines map[string]int64) (string, error) {
	if !a.HasDefault {
		return "{0}", nil
	}

	itemType := m.FindType(a.ItemType)

	entries := make([]string, len(a.Default))

	for i, d := range a.Default {
		if itemType != nil && itemType.Kind == schema.KindEnum && !d.IsLiteral {
			entries[i] = a.ItemType + "_" + d.Symbol
			continue
		}

		if itemType != nil && itemType.Kind == schema.KindBool && !d.IsLiteral {
			entries[i] = strconv.FormatBool(d.Symbol == "true")
			continue
		}

		v, err := d.Resolve(defines)
		if err != nil {
			return "", err
		}

		entries[i] = strconv.FormatInt(v, 10)
	}

	return "{" + strings.Join(entries, ", ") + "}", nil
}

// fieldCType returns the C type a struct field's leaf value is stored as.
func fieldCType(m *schema.Model, f schema.StructField) string {
	switch f.Kind {
	case schema.KindNumericUnsigned, schema.KindNumericSigned:
		return string(f.Numeric.Width)
	case schema.KindBool:
		return "bool"
	case schema.KindArray:
		return m.GetFullType(f.Array.ItemType)
	case schema.KindCustomRef:
		return m.GetFullType(f.CustomRef.TypeName)
	default:
		return "void"
	}
}

// fieldArraySuffix returns the "[N]" suffix an array-kind field's C
// declaration needs, or "" for every other kind.
func fieldArraySuffix(m *schema.Model, f schema.StructField) (string, error) {
	if f.Kind != schema.KindArray {
		return "", nil
	}

	size, err := f.Array.Size.Resolve(m.DefineValues())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("[%d]", size), nil
}
