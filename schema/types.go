package schema

import "strconv"

// Kind discriminates the variant a [Type] carries. This is the tag of the
// tagged union spec.md describes: each [Type] has exactly one Kind and
// exactly one non-nil variant field populated to match it.
type Kind string

// The nine built-in / constructor kinds a [Type] may carry.
const (
	KindBool            Kind = "bool"
	KindEnum            Kind = "enum"
	KindBitField        Kind = "bitfield"
	KindStruct          Kind = "struct"
	KindArray           Kind = "array"
	KindItemized        Kind = "itemized"
	KindNumericUnsigned Kind = "numeric_unsigned"
	KindNumericSigned   Kind = "numeric_signed"
	KindCustomRef       Kind = "custom_ref"
)

// NumericWidth is one of the eight native C integer widths.
type NumericWidth string

const (
	WidthUint8  NumericWidth = "uint8_t"
	WidthUint16 NumericWidth = "uint16_t"
	WidthUint32 NumericWidth = "uint32_t"
	WidthUint64 NumericWidth = "uint64_t"
	WidthInt8   NumericWidth = "int8_t"
	WidthInt16  NumericWidth = "int16_t"
	WidthInt32  NumericWidth = "int32_t"
	WidthInt64  NumericWidth = "int64_t"
)

// numericBounds gives the natural [min, max] of every numeric width, keyed
// by its C type name. Used by Validate to bound ranges/defaults and by
// Query helpers that need a width's natural limits.
var numericBounds = map[NumericWidth][2]int64{
	WidthUint8:  {0, 255},
	WidthUint16: {0, 65535},
	WidthUint32: {0, 4294967295},
	WidthUint64: {0, 1<<63 - 1}, // int64's max; the top half of uint64's range is unrepresentable in a signed accumulator
	WidthInt8:   {-128, 127},
	WidthInt16:  {-32768, 32767},
	WidthInt32:  {-2147483648, 2147483647},
	WidthInt64:  {-1 << 63, 1<<63 - 1},
}

var unsignedWidths = map[NumericWidth]bool{
	WidthUint8: true, WidthUint16: true, WidthUint32: true, WidthUint64: true,
}

var signedWidths = map[NumericWidth]bool{
	WidthInt8: true, WidthInt16: true, WidthInt32: true, WidthInt64: true,
}

// IntValue is a literal-or-symbol integer slot: the sum type spec.md §9
// names for defaults, array sizes, and range endpoints.
type IntValue struct {
	IsLiteral bool
	Literal   int64
	Symbol    string
}

// Resolve returns the IntValue's concrete integer, looking symbols up in
// defines. Literals resolve to themselves.
func (v IntValue) Resolve(defines map[string]int64) (int64, error) {
	if v.IsLiteral {
		return v.Literal, nil
	}

	val, ok := defines[v.Symbol]
	if !ok {
		return 0, rangeErrorf("unresolved identifier %q", v.Symbol)
	}

	return val, nil
}

func (v IntValue) String() string {
	if v.IsLiteral {
		return strconv.FormatInt(v.Literal, 10)
	}

	return v.Symbol
}

// Doc carries the descriptive metadata common to every declared node:
// summary, an optional longer description, and an optional accessor-name
// alias. Purely informational; never constrains validation.
type Doc struct {
	Summary     string
	Description string
	Alias       string
}

// Define is a named integer constant, immutable after Load. Defines live
// in a single flat namespace, separate from types and enum values.
type Define struct {
	Name  string
	Value int64
	Doc   Doc
}

// EnumValue is one named member of an [EnumType].
type EnumValue struct {
	Name       string
	HasValue   bool
	Value      uint8
	ResolvedAt int // sequential index assigned when HasValue is false
	Doc        Doc
}

// EnumType is an ordered set of uniquely-named values, each with an
// optional explicit uint8 value; missing values are assigned sequentially
// by the consumer (see Model.EnumValueNumbers).
type EnumType struct {
	Values []EnumValue
}

// ValueNames returns the enum's value names in declaration order.
func (e *EnumType) ValueNames() []string {
	names := make([]string, len(e.Values))
	for i, v := range e.Values {
		names[i] = v.Name
	}

	return names
}

// HasValueName reports whether name is one of e's declared values.
func (e *EnumType) HasValueName(name string) bool {
	for _, v := range e.Values {
		if v.Name == name {
			return true
		}
	}

	return false
}

// BitFieldBits is one named, fixed-width member of a [BitFieldType].
type BitFieldBits struct {
	Name        string
	Width       int // 1..255
	Default     IntValue
	Range       string // raw "LO..HI" string, or "" if absent
	ElementType string // enum type name, or "" if absent
	Doc         Doc
}

// BitFieldType is an ordered set of fixed-width bit members. The schema
// does not constrain the sum of widths; packing them into a C bitfield
// struct that fits is the caller's responsibility.
type BitFieldType struct {
	Bits []BitFieldBits
}

// StructField is one named field of a [StructType]: a discriminated union
// over {itemized, numeric-unsigned, numeric-signed, bool, array,
// custom-ref}, matching spec.md §3's StructField grammar exactly.
type StructField struct {
	Name string
	Kind Kind // one of KindItemized, KindNumericUnsigned, KindNumericSigned, KindBool, KindArray, KindCustomRef
	Doc  Doc

	Itemized  *ItemizedType
	Numeric   *NumericType
	Bool      *BoolType
	Array     *ArrayType
	CustomRef *CustomRefType
}

// StructType is an ordered set of named fields.
type StructType struct {
	Fields []StructField
}

// FieldByName returns the field named name, or nil if absent.
func (s *StructType) FieldByName(name string) *StructField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}

	return nil
}

// ArrayType is a fixed-size homogeneous array of ItemType. Size is a
// literal or a define name. Default is mandatory when ItemType is
// numeric, bool, or an enum; its length must equal the resolved size.
type ArrayType struct {
	ItemType   string
	Size       IntValue
	Range      string // raw "LO..HI" string, numeric items only
	HasDefault bool
	Default    []IntValue // symbolic entries resolve through defines or enum value names
}

// ItemizedType expands, at query time, into size(Indexes) copies of the
// struct named ItemType, one per index label.
type ItemizedType struct {
	ItemType string
	Indexes  string // an enum name or a define name
}

// NumericType is a fixed-width integer with an optional symbolic range
// and a mandatory default (literal or define name).
type NumericType struct {
	Width   NumericWidth
	Default IntValue
	Range   string // raw "LO..HI" string, or "" if absent (defaults to the width's natural bounds)
}

// BoolType is a single boolean with a mandatory default.
type BoolType struct {
	Default bool
}

// CustomRefType is a struct field referencing a previously (or later)
// declared named type. Default is mandatory when the referenced type is
// an enum, in which case it must name one of that enum's values.
type CustomRefType struct {
	TypeName   string
	HasDefault bool
	Default    string // an enum value name, when TypeName resolves to an enum
}

// Type is one declared (named) type: the top-level tagged union node.
// Exactly one of its variant fields is non-nil, selected by Kind.
type Type struct {
	Name string
	Kind Kind
	Doc  Doc

	Enum     *EnumType
	BitField *BitFieldType
	Struct   *StructType
	Array    *ArrayType
	Numeric  *NumericType
	Bool     *BoolType
}

// Model is the frozen, validated configuration schema: the top of the data
// model (spec.md §3's ConfigModel). Once returned by [Load] it is
// read-only; every method on it is a pure function of its fields.
type Model struct {
	Version uint32
	Defines map[string]Define
	Types   map[string]*Type
	Root    string

	frozen bool
}

// DefineValues returns a name->value map suitable for the range/flag
// evaluators.
func (m *Model) DefineValues() map[string]int64 {
	vals := make(map[string]int64, len(m.Defines))
	for name, d := range m.Defines {
		vals[name] = d.Value
	}

	return vals
}

