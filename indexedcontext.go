package ooroo

// IndexedContext is the pre-indexed evaluation input: a dense slice of
// optional values positioned by field index rather than by path lookup.
// It is the fast path for repeated evaluation against the same
// RuleSet, bypassing the per-evaluation path-to-index resolution that
// Context requires.
type IndexedContext struct {
	values []optionalValue
}

// Get returns the value at index, if present.
func (ic *IndexedContext) Get(index int) (Value, bool) {
	if index < 0 || index >= len(ic.values) {
		return Value{}, false
	}
	v := ic.values[index]
	return v.value, v.present
}

// ContextBuilder constructs an IndexedContext against a fixed
// FieldRegistry. Setting a path the registry does not know about is
// silently ignored, mirroring the registry's role as the authoritative
// set of fields the compiled ruleset can ever observe.
type ContextBuilder struct {
	registry *FieldRegistry
	values   []optionalValue
}

// NewContextBuilder returns a builder bound to registry, with every
// field initially absent.
func NewContextBuilder(registry *FieldRegistry) *ContextBuilder {
	return &ContextBuilder{
		registry: registry,
		values:   make([]optionalValue, registry.Len()),
	}
}

// Set stores value at path if path is a registered field, and returns
// the receiver for chaining. Unregistered paths are a silent no-op.
func (b *ContextBuilder) Set(path string, value Value) *ContextBuilder {
	if idx, ok := b.registry.Get(path); ok {
		b.values[idx] = optionalValue{value: value, present: true}
	}
	return b
}

// Build finalizes the IndexedContext.
func (b *ContextBuilder) Build() *IndexedContext {
	values := make([]optionalValue, len(b.values))
	copy(values, b.values)
	return &IndexedContext{values: values}
}
