package schema

import "fmt"

// This file is pass 2 of spec.md §4.2: semantic validation of the type
// graph parse.go already built syntactically. It runs after the native
// numeric/bool types have been injected, so references to "uint8_t" etc.
// resolve like any other named type.

// validate runs every semantic check spec.md §5 and §6 require, in an
// order chosen so structural problems (unresolved references, cycles) are
// reported before the numeric/enum detail checks that assume the graph is
// well-formed.
func validate(m *Model) error {
	if m.Root == "" {
		return schemaErrorf("root is required")
	}

	rootType, ok := m.Types[m.Root]
	if !ok {
		return schemaErrorf("root %q does not name a declared type", m.Root)
	}

	if rootType.Kind != KindStruct {
		return schemaErrorf("root %q must be a struct, got %s", m.Root, rootType.Kind)
	}

	for name, t := range m.Types {
		if err := validateReferences(m, name, t); err != nil {
			return err
		}
	}

	if err := detectCycles(m); err != nil {
		return err
	}

	for name, t := range m.Types {
		if err := validateDetails(m, name, t); err != nil {
			return err
		}
	}

	return nil
}

// validateReferences checks that every type name a Type or its fields
// mention actually resolves in m.Types.
func validateReferences(m *Model, name string, t *Type) error {
	switch t.Kind {
	case KindStruct:
		for _, f := range t.Struct.Fields {
			if err := validateFieldReferences(m, name, f); err != nil {
				return err
			}
		}

	case KindArray:
		if _, ok := m.Types[t.Array.ItemType]; !ok {
			return schemaErrorf("type %q: array item_type %q is not declared", name, t.Array.ItemType)
		}

	case KindBitField:
		for _, b := range t.BitField.Bits {
			if b.ElementType != "" {
				et, ok := m.Types[b.ElementType]
				if !ok {
					return schemaErrorf("type %q: bit %q references undeclared type %q", name, b.Name, b.ElementType)
				}

				if et.Kind != KindEnum {
					return schemaErrorf("type %q: bit %q's type %q is not an enum", name, b.Name, b.ElementType)
				}
			}
		}
	}

	return nil
}

func validateFieldReferences(m *Model, structName string, f StructField) error {
	switch f.Kind {
	case KindItemized:
		if _, ok := m.Types[f.Itemized.ItemType]; !ok {
			return schemaErrorf("struct %q: field %q: item_type %q is not declared", structName, f.Name, f.Itemized.ItemType)
		}

		if err := validateIndexes(m, structName, f.Name, f.Itemized.Indexes); err != nil {
			return err
		}

	case KindArray:
		if _, ok := m.Types[f.Array.ItemType]; !ok {
			return schemaErrorf("struct %q: field %q: item_type %q is not declared", structName, f.Name, f.Array.ItemType)
		}

	case KindCustomRef:
		target, ok := m.Types[f.CustomRef.TypeName]
		if !ok {
			return schemaErrorf("struct %q: field %q: references undeclared type %q", structName, f.Name, f.CustomRef.TypeName)
		}

		if target.Kind == KindEnum && !f.CustomRef.HasDefault {
			return schemaErrorf("struct %q: field %q: enum reference requires a default", structName, f.Name)
		}

		if target.Kind == KindEnum && f.CustomRef.HasDefault && !target.Enum.HasValueName(f.CustomRef.Default) {
			return schemaErrorf("struct %q: field %q: default %q is not a value of enum %q", structName, f.Name, f.CustomRef.Default, f.CustomRef.TypeName)
		}
	}

	return nil
}

// validateIndexes checks that an itemized field's "indexes" names either a
// declared enum or a declared define, per spec.md §3's ItemizedType.
func validateIndexes(m *Model, structName, fieldName, indexes string) error {
	if t, ok := m.Types[indexes]; ok {
		if t.Kind != KindEnum {
			return schemaErrorf("struct %q: field %q: indexes %q must be an enum", structName, fieldName, indexes)
		}

		return nil
	}

	if _, ok := m.Defines[indexes]; ok {
		return nil
	}

	return schemaErrorf("struct %q: field %q: indexes %q is neither a declared enum nor a define", structName, fieldName, indexes)
}

// detectCycles rejects a struct graph that references itself, directly or
// transitively, through a custom-ref field or an array/itemized item_type,
// per spec.md §9's two-pass resolution design note: with forward
// references allowed, a cycle can only be caught after the whole graph is
// known, hence doing this after pass 1 rather than during it.
func detectCycles(m *Model) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(m.Types))

	var visit func(name string, path []string) error

	visit = func(name string, path []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return schemaErrorf("cycle detected: %s -> %s", joinPath(path), name)
		}

		color[name] = gray

		t := m.Types[name]
		if t == nil {
			color[name] = black
			return nil
		}

		next := append(path, name)

		for _, dep := range structuralDeps(t) {
			if err := visit(dep, next); err != nil {
				return err
			}
		}

		color[name] = black

		return nil
	}

	for name := range m.Types {
		if err := visit(name, nil); err != nil {
			return err
		}
	}

	return nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " -> "
		}

		out += p
	}

	return out
}

// structuralDeps returns the type names t's definition embeds by value
// (and therefore must not cycle back to t): struct custom-ref fields and
// array/itemized item types that are themselves structs. Numeric/bool/enum
// leaf references never participate in a cycle.
func structuralDeps(t *Type) []string {
	var deps []string

	switch t.Kind {
	case KindStruct:
		for _, f := range t.Struct.Fields {
			switch f.Kind {
			case KindCustomRef:
				deps = append(deps, f.CustomRef.TypeName)
			case KindArray:
				deps = append(deps, f.Array.ItemType)
			case KindItemized:
				deps = append(deps, f.Itemized.ItemType)
			}
		}

	case KindArray:
		deps = append(deps, t.Array.ItemType)
	}

	return deps
}

// validateDetails runs the numeric/enum/array/bitfield detail checks that
// assume the reference graph is already acyclic and fully resolved.
func validateDetails(m *Model, name string, t *Type) error {
	defines := m.DefineValues()

	switch t.Kind {
	case KindNumericUnsigned, KindNumericSigned:
		if err := validateNumeric(name, t.Numeric, defines); err != nil {
			return err
		}

	case KindArray:
		if err := validateArray(m, name, t.Array, defines); err != nil {
			return err
		}

	case KindEnum:
		if err := validateEnumUniqueness(name, t.Enum); err != nil {
			return err
		}

	case KindBitField:
		for _, b := range t.BitField.Bits {
			if b.ElementType != "" {
				// validateReferences already confirmed ElementType names a
				// declared enum; here we only need membership of the default.
				enumType := m.Types[b.ElementType]

				if !enumType.Enum.HasValueName(b.Default.Symbol) {
					return schemaErrorf("bitfield %q: bit %q: default %q is not a value of enum %q", name, b.Name, b.Default.Symbol, b.ElementType)
				}

				continue
			}

			if _, err := b.Default.Resolve(defines); err != nil {
				return fmt.Errorf("bitfield %q: bit %q: %w", name, b.Name, err)
			}
		}

	case KindStruct:
		for _, f := range t.Struct.Fields {
			if err := validateStructField(m, name, f, defines); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateStructField(m *Model, structName string, f StructField, defines map[string]int64) error {
	switch f.Kind {
	case KindNumericUnsigned, KindNumericSigned:
		if err := validateNumeric(structName+"."+f.Name, f.Numeric, defines); err != nil {
			return err
		}

	case KindArray:
		if err := validateArray(m, structName+"."+f.Name, f.Array, defines); err != nil {
			return err
		}
	}

	return nil
}

// validateNumeric checks range endpoints lie within the width's natural
// bounds and the default lies within the effective range, per spec.md §5's
// numeric invariants.
func validateNumeric(name string, n *NumericType, defines map[string]int64) error {
	bounds := numericBounds[n.Width]

	lo, hi := bounds[0], bounds[1]

	if n.Range != "" {
		rlo, rhi, err := parseRangeEndpoints(n.Range, defines)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		if rlo < bounds[0] || rhi > bounds[1] || rlo > rhi {
			return schemaErrorf("%s: range %q exceeds %s's natural bounds [%d, %d]", name, n.Range, n.Width, bounds[0], bounds[1])
		}

		lo, hi = rlo, rhi
	}

	def, err := n.Default.Resolve(defines)
	if err != nil {
		return fmt.Errorf("%s: default: %w", name, err)
	}

	if def < lo || def > hi {
		return schemaErrorf("%s: default %d is outside range [%d, %d]", name, def, lo, hi)
	}

	return nil
}

// validateArray checks the item type exists, the resolved size is
// positive, and -- when present -- the default slice's length matches the
// resolved size exactly, per spec.md §5's array invariants.
func validateArray(m *Model, name string, a *ArrayType, defines map[string]int64) error {
	size, err := a.Size.Resolve(defines)
	if err != nil {
		return fmt.Errorf("%s: size: %w", name, err)
	}

	if size <= 0 {
		return schemaErrorf("%s: size must be positive, got %d", name, size)
	}

	if a.HasDefault && int64(len(a.Default)) != size {
		return schemaErrorf("%s: default has %d entries, expected %d", name, len(a.Default), size)
	}

	itemType := m.Types[a.ItemType]
	if itemType == nil {
		return nil // already reported by validateReferences
	}

	if !a.HasDefault && requiresArrayDefault(itemType.Kind) {
		return schemaErrorf("%s: default is mandatory for %s item type", name, itemType.Kind)
	}

	if a.HasDefault && itemType.Kind == KindEnum {
		for _, d := range a.Default {
			if d.IsLiteral {
				continue
			}

			if !itemType.Enum.HasValueName(d.Symbol) {
				return schemaErrorf("%s: default entry %q is not a value of enum %q", name, d.Symbol, a.ItemType)
			}
		}
	}

	if itemType.Kind == KindNumericUnsigned || itemType.Kind == KindNumericSigned {
		if a.HasDefault {
			for _, d := range a.Default {
				if _, err := d.Resolve(defines); err != nil {
					return fmt.Errorf("%s: default entry: %w", name, err)
				}
			}
		}
	}

	return nil
}

// requiresArrayDefault reports whether spec.md §3's Array mandates a
// default for an item type of this kind: numeric, bool, or enum. Struct and
// bitfield item types (and any other constructor) never require one.
func requiresArrayDefault(k Kind) bool {
	switch k {
	case KindNumericUnsigned, KindNumericSigned, KindBool, KindEnum:
		return true
	default:
		return false
	}
}

// validateEnumUniqueness simulates the sequential fill-in a code generator
// performs when assigning values to members that omit an explicit "value"
// (in declaration order, starting from 0 and skipping any value already
// taken), then checks the fully-assigned value set is free of collisions.
// Catching this at schema-validation time, rather than leaving it to
// silently miscompile into two C enumerators sharing a numeric value, is a
// deliberate addition beyond what the original tool checked.
func validateEnumUniqueness(name string, e *EnumType) error {
	taken := map[uint8]string{}

	for _, v := range e.Values {
		if v.HasValue {
			if prior, ok := taken[v.Value]; ok {
				return schemaErrorf("enum %q: values %q and %q both have value %d", name, prior, v.Name, v.Value)
			}

			taken[v.Value] = v.Name
		}
	}

	next := uint8(0)

	for _, v := range e.Values {
		if v.HasValue {
			continue
		}

		for {
			if _, ok := taken[next]; !ok {
				break
			}

			if next == 255 {
				return schemaErrorf("enum %q: no value left to assign to %q", name, v.Name)
			}

			next++
		}

		taken[next] = v.Name
	}

	return nil
}
