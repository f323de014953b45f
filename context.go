package ooroo

import "strings"

// Context is a nested mapping from dot-separated path segments to Value,
// the ad-hoc input shape for RuleSet.Evaluate. Setting a deeper path
// under an existing leaf replaces that leaf with a branch; only leaves
// are readable, so reading an intermediate path yields absent.
type Context struct {
	data map[string]contextNode
}

type contextNode struct {
	isLeaf bool
	leaf   Value
	branch map[string]contextNode
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{data: make(map[string]contextNode)}
}

// Set stores value at the dot-separated path, creating intermediate
// branches as needed, and returns the receiver for chaining.
func (c *Context) Set(path string, value Value) *Context {
	segments := strings.Split(path, ".")
	c.data = setRecursive(c.data, segments, value)
	return c
}

// Get looks up the value at path. It returns (zero, false) if the path
// does not exist or names an intermediate branch rather than a leaf.
func (c *Context) Get(path string) (Value, bool) {
	segments := strings.Split(path, ".")
	return getRecursive(c.data, segments)
}

func setRecursive(m map[string]contextNode, segments []string, value Value) map[string]contextNode {
	if m == nil {
		m = make(map[string]contextNode)
	}
	head, rest := segments[0], segments[1:]
	if len(rest) == 0 {
		m[head] = contextNode{isLeaf: true, leaf: value}
		return m
	}
	existing := m[head]
	if existing.isLeaf || existing.branch == nil {
		existing = contextNode{branch: make(map[string]contextNode)}
	}
	existing.branch = setRecursive(existing.branch, rest, value)
	m[head] = existing
	return m
}

func getRecursive(m map[string]contextNode, segments []string) (Value, bool) {
	node, ok := m[segments[0]]
	if !ok {
		return Value{}, false
	}
	if len(segments) == 1 {
		if node.isLeaf {
			return node.leaf, true
		}
		return Value{}, false
	}
	if node.isLeaf {
		return Value{}, false
	}
	return getRecursive(node.branch, segments[1:])
}

// flattenContext projects the context through a field registry into a
// slice indexed the way the compiled ruleset expects, with entries left
// not present for fields the context does not hold.
func flattenContext(ctx *Context, registry *FieldRegistry) []optionalValue {
	values := make([]optionalValue, registry.Len())
	for _, pair := range registry.Pairs() {
		if v, ok := ctx.Get(pair.Path); ok {
			values[pair.Index] = optionalValue{value: v, present: true}
		}
	}
	return values
}

// optionalValue is an Option<Value>: present distinguishes a genuinely
// absent field from the zero Value.
type optionalValue struct {
	value   Value
	present bool
}
