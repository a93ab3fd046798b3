package schema

import (
	"strings"

	"github.com/goccy/go-yaml/ast"
)

// This file ports the AST-walking idiom from the teacher's
// magicschema/generator.go and infer.go (unwrapNode, resolveAliases,
// buildAnchorMap, the anchorVisitor, and the ast.Node type-switch
// dispatch) and generalizes it from "build a JSON-schema node" into
// "prune flagged-out subtrees and hand the rest to the type-model parser".

// unwrapNode resolves TagNode and AnchorNode wrappers to the underlying
// value node, exactly as the teacher's infer.go does.
func unwrapNode(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.TagNode:
			node = n.Value
		case *ast.AnchorNode:
			node = n.Value
		default:
			return node
		}
	}
}

// buildAnchorMap walks node and collects every anchor definition, exactly
// as the teacher's generator.go does.
func buildAnchorMap(node ast.Node) map[string]ast.Node {
	anchors := make(map[string]ast.Node)
	ast.Walk(&anchorVisitor{anchors: anchors}, node)

	return anchors
}

type anchorVisitor struct {
	anchors map[string]ast.Node
}

// Visit implements the [ast.Visitor] interface.
func (v *anchorVisitor) Visit(node ast.Node) ast.Visitor {
	if anchor, ok := node.(*ast.AnchorNode); ok {
		v.anchors[anchor.Name.String()] = anchor.Value
	}

	return v
}

// resolveAliases resolves an alias node using the anchor map, exactly as
// the teacher's generator.go does. An alias with no matching anchor is
// treated as null, just as in the teacher.
func resolveAliases(node ast.Node, anchors map[string]ast.Node) ast.Node {
	if node == nil {
		return nil
	}

	alias, ok := node.(*ast.AliasNode)
	if !ok {
		return node
	}

	name := alias.Value.String()
	if resolved, found := anchors[name]; found {
		return resolved
	}

	return nil
}

// resolve unwraps tags/anchors and follows an alias in one step.
func resolve(node ast.Node, anchors map[string]ast.Node) ast.Node {
	return unwrapNode(resolveAliases(unwrapNode(node), anchors))
}

// mappingValues normalizes a mapping-shaped node (*ast.MappingNode or a
// lone *ast.MappingValueNode, which goccy/go-yaml produces for
// single-entry mappings) into an ordered slice of entries, mirroring the
// teacher's walkMapping's mn/extraValues handling.
func mappingValues(node ast.Node) []*ast.MappingValueNode {
	switch n := node.(type) {
	case *ast.MappingNode:
		return n.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}
	default:
		return nil
	}
}

// scalarText returns the trimmed source text of a scalar node, unwrapping
// tags/anchors first. Quoted strings keep their surrounding quotes
// stripped so "FOO" and FOO both read as the identifier FOO.
func scalarText(node ast.Node) string {
	if node == nil {
		return ""
	}

	node = unwrapNode(node)

	s := strings.TrimSpace(node.String())
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}

	return s
}

// keyText returns the plain key name of a mapping entry.
func keyText(mvn *ast.MappingValueNode) string {
	return scalarText(mvn.Key)
}

// findField looks up a field by its plain key text among entries; the
// entry's value is returned unresolved. Returns nil if absent.
func findField(entries []*ast.MappingValueNode, anchors map[string]ast.Node, name string) *ast.MappingValueNode {
	for _, mvn := range entries {
		if keyText(mvn) == name {
			return mvn
		}
	}

	return nil
}

// fieldValue resolves a named field's value node (aliases/tags unwrapped),
// or nil if the field is absent.
func fieldValue(entries []*ast.MappingValueNode, anchors map[string]ast.Node, name string) ast.Node {
	mvn := findField(entries, anchors, name)
	if mvn == nil {
		return nil
	}

	return resolve(mvn.Value, anchors)
}

// pruneFlags walks node recursively, evaluating any "flag" entry found in
// a mapping against defines (via evalFlag) and dropping the entire
// enclosing mapping when it is false. It mirrors the teacher's
// ConfigModel.filter_dict from original_source, adapted to goccy's AST
// instead of a decoded map tree. anchors must already contain every
// anchor defined anywhere in the document, since an alias may reference
// an anchor defined later in document order.
func pruneFlags(node ast.Node, anchors map[string]ast.Node, defines map[string]int64) (ast.Node, error) {
	node = resolve(node, anchors)
	if node == nil {
		return nil, nil
	}

	switch n := node.(type) {
	case *ast.MappingNode:
		return pruneMapping(n.Values, anchors, defines)
	case *ast.MappingValueNode:
		return pruneMapping([]*ast.MappingValueNode{n}, anchors, defines)
	case *ast.SequenceNode:
		kept := make([]ast.Node, 0, len(n.Values))

		for _, v := range n.Values {
			prunedChild, err := pruneFlags(v, anchors, defines)
			if err != nil {
				return nil, err
			}

			if prunedChild != nil {
				kept = append(kept, prunedChild)
			}
		}

		n.Values = kept

		return n, nil
	default:
		return node, nil
	}
}

// pruneMapping implements a single mapping level of pruneFlags: if a
// "flag" entry is present and evaluates false, the whole mapping is
// dropped (nil, nil). Otherwise every remaining entry's value is pruned
// recursively and entries that prune away to nil are dropped, matching
// filter_dict's "don't include empty dictionaries" behavior.
func pruneMapping(entries []*ast.MappingValueNode, anchors map[string]ast.Node, defines map[string]int64) (ast.Node, error) {
	if flagEntry := findField(entries, anchors, "flag"); flagEntry != nil {
		expr := scalarText(resolve(flagEntry.Value, anchors))

		ok, err := evalFlag(expr, defines)
		if err != nil {
			return nil, schemaErrorf("invalid expression %s", expr)
		}

		if !ok {
			return nil, nil
		}
	}

	out := make([]*ast.MappingValueNode, 0, len(entries))

	for _, mvn := range entries {
		key := keyText(mvn)
		if key == "flag" {
			continue
		}

		prunedVal, err := pruneFlags(mvn.Value, anchors, defines)
		if err != nil {
			return nil, err
		}

		if prunedVal == nil {
			if _, isMap := isMappingShaped(mvn.Value); isMap {
				continue // an all-pruned-away nested mapping vanishes
			}
		}

		if prunedVal != nil {
			mvn.Value = prunedVal
		}

		out = append(out, mvn)
	}

	return &ast.MappingNode{Values: out}, nil
}

func isMappingShaped(node ast.Node) (ast.Node, bool) {
	switch node.(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		return node, true
	default:
		return node, false
	}
}
