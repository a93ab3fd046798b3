package schema

import (
	"regexp"
	"strconv"

	"github.com/goccy/go-yaml/ast"
)

// This file is pass 1 of spec.md §4.2: a purely syntactic parse of the
// pruned YAML AST into the Type Model. Each node's variant is selected by
// its "type" discriminator; an unrecognized top-level discriminator is a
// *SchemaError. Each parse function reads only the keys its variant uses:
// unrecognized fields on a recognized variant are ignored, not rejected.

var numericRangePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.\.[A-Za-z0-9_-]+$`)
var bitRangePattern = regexp.MustCompile(`^\d+\.\.\d+$`)

var numericWidthTags = map[string]NumericWidth{
	"uint8_t":  WidthUint8,
	"uint16_t": WidthUint16,
	"uint32_t": WidthUint32,
	"uint64_t": WidthUint64,
	"int8_t":   WidthInt8,
	"int16_t":  WidthInt16,
	"int32_t":  WidthInt32,
	"int64_t":  WidthInt64,
}

// parseDocument parses the top-level mapping (version, defines, types,
// root) into an unvalidated *Model.
func parseDocument(node ast.Node, anchors map[string]ast.Node) (*Model, error) {
	entries := mappingValues(node)

	m := &Model{
		Defines: map[string]Define{},
		Types:   map[string]*Type{},
	}

	if v := fieldValue(entries, anchors, "version"); v != nil {
		n, err := strconv.ParseUint(scalarText(v), 10, 32)
		if err != nil {
			return nil, schemaErrorf("version: invalid uint32 %q", scalarText(v))
		}

		m.Version = uint32(n)
	}

	if definesNode := fieldValue(entries, anchors, "defines"); definesNode != nil {
		for _, mvn := range mappingValues(definesNode) {
			name := keyText(mvn)

			def, err := parseDefine(name, mappingValues(resolve(mvn.Value, anchors)), anchors)
			if err != nil {
				return nil, err
			}

			m.Defines[name] = *def
		}
	}

	if typesNode := fieldValue(entries, anchors, "types"); typesNode != nil {
		for _, mvn := range mappingValues(typesNode) {
			name := keyText(mvn)

			t, err := parseType(name, mappingValues(resolve(mvn.Value, anchors)), anchors)
			if err != nil {
				return nil, err
			}

			m.Types[name] = t
		}
	}

	m.Root = scalarText(fieldValue(entries, anchors, "root"))

	return m, nil
}

func parseDefine(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*Define, error) {
	val := scalarText(fieldValue(entries, anchors, "value"))

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, schemaErrorf("define %q: invalid integer value %q", name, val)
	}

	return &Define{
		Name:  name,
		Value: n,
		Doc:   parseDoc(entries, anchors),
	}, nil
}

func parseDoc(entries []*ast.MappingValueNode, anchors map[string]ast.Node) Doc {
	return Doc{
		Summary:     scalarText(fieldValue(entries, anchors, "summary")),
		Description: scalarText(fieldValue(entries, anchors, "description")),
		Alias:       scalarText(fieldValue(entries, anchors, "alias")),
	}
}

// parseType dispatches a named top-level type declaration on its "type"
// discriminator.
func parseType(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*Type, error) {
	tag := scalarText(fieldValue(entries, anchors, "type"))
	doc := parseDoc(entries, anchors)

	t := &Type{Name: name, Doc: doc}

	switch {
	case tag == "enum":
		t.Kind = KindEnum

		v, err := parseEnum(name, entries, anchors)
		if err != nil {
			return nil, err
		}

		t.Enum = v

	case tag == "bitfield":
		t.Kind = KindBitField

		v, err := parseBitField(name, entries, anchors)
		if err != nil {
			return nil, err
		}

		t.BitField = v

	case tag == "struct":
		t.Kind = KindStruct

		v, err := parseStruct(name, entries, anchors)
		if err != nil {
			return nil, err
		}

		t.Struct = v

	case tag == "array":
		t.Kind = KindArray

		v, err := parseArray(name, entries, anchors)
		if err != nil {
			return nil, err
		}

		t.Array = v

	case tag == "bool":
		t.Kind = KindBool
		t.Bool = &BoolType{Default: parseBoolLiteral(scalarText(fieldValue(entries, anchors, "default")))}

	case numericWidthTags[tag] != "":
		width := numericWidthTags[tag]
		if unsignedWidths[width] {
			t.Kind = KindNumericUnsigned
		} else {
			t.Kind = KindNumericSigned
		}

		v, err := parseNumeric(name, width, entries, anchors)
		if err != nil {
			return nil, err
		}

		t.Numeric = v

	default:
		return nil, schemaErrorf("unknown type %s", tag)
	}

	return t, nil
}

func parseBoolLiteral(s string) bool {
	return s == "true"
}

func parseEnum(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*EnumType, error) {
	valuesNode := fieldValue(entries, anchors, "values")
	if valuesNode == nil {
		return nil, schemaErrorf("enum %q: missing values", name)
	}

	seen := map[string]bool{}

	var values []EnumValue

	for i, mvn := range mappingValues(valuesNode) {
		valName := keyText(mvn)
		if seen[valName] {
			return nil, schemaErrorf("enum %q: duplicate value name %q", name, valName)
		}

		seen[valName] = true

		ev := EnumValue{Name: valName, ResolvedAt: i}

		valEntries := mappingValues(resolve(mvn.Value, anchors))
		if vf := fieldValue(valEntries, anchors, "value"); vf != nil {
			n, err := strconv.ParseUint(scalarText(vf), 10, 8)
			if err != nil {
				return nil, schemaErrorf("enum %q: value %q: invalid uint8 %q", name, valName, scalarText(vf))
			}

			ev.HasValue = true
			ev.Value = uint8(n)
		}

		ev.Doc = parseDoc(valEntries, anchors)
		values = append(values, ev)
	}

	return &EnumType{Values: values}, nil
}

func parseBitField(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*BitFieldType, error) {
	bitsNode := fieldValue(entries, anchors, "bits")
	if bitsNode == nil {
		return nil, schemaErrorf("bitfield %q: missing bits", name)
	}

	var bits []BitFieldBits

	for _, mvn := range mappingValues(bitsNode) {
		bitName := keyText(mvn)
		bitEntries := mappingValues(resolve(mvn.Value, anchors))

		width, err := strconv.Atoi(scalarText(fieldValue(bitEntries, anchors, "size")))
		if err != nil || width < 1 || width > 255 {
			return nil, schemaErrorf("bitfield %q: bit %q: invalid size", name, bitName)
		}

		rng := scalarText(fieldValue(bitEntries, anchors, "range"))
		if rng != "" && !bitRangePattern.MatchString(rng) {
			return nil, schemaErrorf("bitfield %q: bit %q: invalid range %q", name, bitName, rng)
		}

		bits = append(bits, BitFieldBits{
			Name:        bitName,
			Width:       width,
			Default:     parseIntValue(scalarText(fieldValue(bitEntries, anchors, "default"))),
			Range:       rng,
			ElementType: scalarText(fieldValue(bitEntries, anchors, "type")),
			Doc:         parseDoc(bitEntries, anchors),
		})
	}

	return &BitFieldType{Bits: bits}, nil
}

func parseStruct(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*StructType, error) {
	fieldsNode := fieldValue(entries, anchors, "fields")
	if fieldsNode == nil {
		return nil, schemaErrorf("struct %q: missing fields", name)
	}

	var fields []StructField

	for _, mvn := range mappingValues(fieldsNode) {
		fieldName := keyText(mvn)

		f, err := parseStructField(name, fieldName, mappingValues(resolve(mvn.Value, anchors)), anchors)
		if err != nil {
			return nil, err
		}

		fields = append(fields, *f)
	}

	return &StructType{Fields: fields}, nil
}

func parseStructField(structName, fieldName string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*StructField, error) {
	tag := scalarText(fieldValue(entries, anchors, "type"))
	doc := parseDoc(entries, anchors)

	f := &StructField{Name: fieldName, Doc: doc}

	switch {
	case tag == "itemized":
		f.Kind = KindItemized
		f.Itemized = &ItemizedType{
			ItemType: scalarText(fieldValue(entries, anchors, "item_type")),
			Indexes:  scalarText(fieldValue(entries, anchors, "indexes")),
		}

	case tag == "array":
		f.Kind = KindArray

		arr, err := parseArray(structName+"."+fieldName, entries, anchors)
		if err != nil {
			return nil, err
		}

		f.Array = arr

	case tag == "bool":
		f.Kind = KindBool
		f.Bool = &BoolType{Default: parseBoolLiteral(scalarText(fieldValue(entries, anchors, "default")))}

	case numericWidthTags[tag] != "":
		width := numericWidthTags[tag]
		if unsignedWidths[width] {
			f.Kind = KindNumericUnsigned
		} else {
			f.Kind = KindNumericSigned
		}

		num, err := parseNumeric(structName+"."+fieldName, width, entries, anchors)
		if err != nil {
			return nil, err
		}

		f.Numeric = num

	case tag != "":
		f.Kind = KindCustomRef

		defaultNode := fieldValue(entries, anchors, "default")
		f.CustomRef = &CustomRefType{
			TypeName:   tag,
			HasDefault: defaultNode != nil,
			Default:    scalarText(defaultNode),
		}

	default:
		return nil, schemaErrorf("struct %q: field %q: missing type", structName, fieldName)
	}

	return f, nil
}

func parseArray(name string, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*ArrayType, error) {
	rng := scalarText(fieldValue(entries, anchors, "range"))

	var defaults []IntValue

	defaultNode := fieldValue(entries, anchors, "default")
	hasDefault := defaultNode != nil

	if hasDefault {
		if seq, ok := defaultNode.(*ast.SequenceNode); ok {
			for _, v := range seq.Values {
				defaults = append(defaults, parseIntValue(scalarText(resolve(v, anchors))))
			}
		}
	}

	return &ArrayType{
		ItemType:   scalarText(fieldValue(entries, anchors, "item_type")),
		Size:       parseIntValue(scalarText(fieldValue(entries, anchors, "size"))),
		Range:      rng,
		HasDefault: hasDefault,
		Default:    defaults,
	}, nil
}

func parseNumeric(name string, width NumericWidth, entries []*ast.MappingValueNode, anchors map[string]ast.Node) (*NumericType, error) {
	rng := scalarText(fieldValue(entries, anchors, "range"))
	if rng != "" && !numericRangePattern.MatchString(rng) {
		return nil, schemaErrorf("%s: invalid range %q", name, rng)
	}

	return &NumericType{
		Width:   width,
		Default: parseIntValue(scalarText(fieldValue(entries, anchors, "default"))),
		Range:   rng,
	}, nil
}

// parseIntValue classifies a scalar as a literal integer or a symbolic
// define name, per spec.md §9's Literal|Symbol sum type.
func parseIntValue(s string) IntValue {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue{IsLiteral: true, Literal: n}
	}

	return IntValue{Symbol: s}
}
