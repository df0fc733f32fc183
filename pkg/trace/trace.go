// Package trace implements the optional evaluation trace overlay: a tree
// recording every weighted choice, method call and import made while
// evaluating a generator, for tools that want to show "why did I get this
// output" rather than just the output itself. It is zero-cost when
// disabled -- Start/End become no-ops and nothing is allocated.
package trace

import (
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/utils"
)

// OperationType labels what kind of decision a Node records.
type OperationType string

const (
	OpList   OperationType = "list"
	OpChoice OperationType = "choice"
	OpMethod OperationType = "method"
	OpImport OperationType = "import"
)

// Node is one recorded decision: which list/choice/method produced which
// result, and (for weighted selections) what the alternatives and weights
// were.
type Node struct {
	Label             string
	Operation         OperationType
	Span              span.Span
	Children          []*Node
	AvailableItems    []string
	SelectedIndex     *int
	InlineListContent string
	Result            string
}

// Trace collects a tree of Nodes as evaluation proceeds. The zero value has
// tracing disabled.
type Trace struct {
	Enabled bool
	Root    *Node
	stack   utils.Stack[*Node]
}

// New returns a Trace, enabled or not as requested.
func New(enabled bool) *Trace {
	return &Trace{Enabled: enabled}
}

// Start pushes a new node for an operation about to begin. A no-op when
// tracing is disabled.
func (t *Trace) Start(label string, op OperationType, sp span.Span) {
	if !t.Enabled {
		return
	}
	node := &Node{Label: label, Operation: op, Span: sp}
	if parent, err := t.stack.Top(); err == nil {
		parent.Children = append(parent.Children, node)
	} else {
		t.Root = node
	}
	t.stack.Push(node)
}

// End records the final string result for the node pushed by the matching
// Start and pops it.
func (t *Trace) End(result string) {
	if !t.Enabled {
		return
	}
	if node, err := t.stack.Pop(); err == nil {
		node.Result = result
	}
}

// Current returns the node currently on top of the stack, or nil.
func (t *Trace) Current() *Node {
	if !t.Enabled {
		return nil
	}
	node, err := t.stack.Top()
	if err != nil {
		return nil
	}
	return node
}
