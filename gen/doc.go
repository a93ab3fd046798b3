// Package gen renders a validated [schema.Model] to C source and header
// files: typed enums and structs, a flat table of leaf keys, and the
// getter/checker function declarations a firmware build links against.
//
// Generation is template-driven (text/template over an embedded template
// set) rather than hand-assembled string concatenation, following
// openconfig-ygot's code-generation shape: an intermediate representation
// (here, [schema.Model] itself, already pure data) feeds a fixed set of
// named templates whose FuncMap exposes the model's query methods.
package gen
