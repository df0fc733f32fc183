// Package compiler lowers a parsed ast.Program into a CompiledProgram:
// duplicate-checked, import-validated, and laid out in an order-preserving
// map so evaluation never depends on Go's randomized map iteration order
// (see pkg/jack/lowering.go's NewLowerer, which sorts classes into an
// OrderedMap for exactly this reason).
package compiler

import (
	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/utils"
)

// CompiledProgram is the flattened, validated form of an ast.Program ready
// for repeated evaluation against different seeds.
type CompiledProgram struct {
	Lists utils.OrderedMap[string, CompiledList]
}

// CompiledList mirrors ast.List after validation; Items/Output are carried
// over largely unchanged, sublists are recursively compiled.
type CompiledList struct {
	Name   string
	Items  []CompiledItem
	Output []span.Spanned[ast.ContentPart]
}

func (l CompiledList) HasOutput() bool { return l.Output != nil }

// CompiledItem mirrors ast.Item with its sublists compiled recursively.
type CompiledItem struct {
	Content  []span.Spanned[ast.ContentPart]
	Weight   *ast.ItemWeight
	Sublists []CompiledList
}
