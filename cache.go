package ooroo

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"
)

const (
	cacheMagic         = "OORO"
	cacheFormatVersion = uint16(1)
	cacheEngineVersion = uint16(1)
	cacheHeaderSize    = 32
)

// SerializeError is returned by RuleSet.ToBytes/ToBinaryFile when a
// compiled ruleset cannot be encoded.
type SerializeError struct {
	Op  string
	Err error
}

func (e *SerializeError) Error() string { return fmt.Sprintf("ooroo: serialize: %s: %v", e.Op, e.Err) }
func (e *SerializeError) Unwrap() error { return e.Err }

// DeserializeError is returned by FromBytes/FromBinaryFile when a byte
// stream does not decode into a valid compiled ruleset.
type DeserializeError struct {
	Kind    string
	Message string
}

func (e *DeserializeError) Error() string { return fmt.Sprintf("ooroo: deserialize: %s: %s", e.Kind, e.Message) }

func badMagic() error { return &DeserializeError{Kind: "bad_magic", Message: "missing OORO magic bytes"} }

func incompatibleVersion(blob, supported uint16) error {
	return &DeserializeError{Kind: "incompatible_version", Message: fmt.Sprintf("blob format version %d, supported %d", blob, supported)}
}

func lengthMismatch(expected, actual int) error {
	return &DeserializeError{Kind: "length_mismatch", Message: fmt.Sprintf("expected %d bytes, got %d", expected, actual)}
}

func checksumMismatch() error {
	return &DeserializeError{Kind: "checksum_mismatch", Message: "payload checksum does not match header"}
}

func decodeFailure(err error) error {
	return &DeserializeError{Kind: "decode_failure", Message: err.Error()}
}

func validationFailure(description string) error {
	return &DeserializeError{Kind: "validation_failure", Message: description}
}

type exprKind int

const (
	exprKindCompare exprKind = iota
	exprKindRuleRef
	exprKindAnd
	exprKindOr
	exprKindNot
)

type serializedValue struct {
	Kind kind
	I    int64
	F    float64
	B    bool
	S    string
}

type serializedExpr struct {
	Kind       exprKind
	FieldIndex int              `msgpack:",omitempty"`
	Op         CompareOp        `msgpack:",omitempty"`
	Value      *serializedValue `msgpack:",omitempty"`
	RuleIndex  int              `msgpack:",omitempty"`
	Children   []serializedExpr `msgpack:",omitempty"`
	Inner      *serializedExpr  `msgpack:",omitempty"`
}

type serializedRule struct {
	Name      string
	Condition serializedExpr
}

type serializedTerminal struct {
	RuleIndex int
	Name      string
	Priority  uint32
}

type serializedFieldPair struct {
	Path  string
	Index int
}

type serializedRuleNamePair struct {
	Name  string
	Index int
}

type serializedMetadata struct {
	RuleCount     int
	TerminalCount int
	FieldCount    int
	SourceDigest  []byte `msgpack:",omitempty"` // 32-byte BLAKE3 of DSL source text, if supplied
}

type serializedPayload struct {
	Metadata  serializedMetadata
	Rules     []serializedRule
	Terminals []serializedTerminal
	Fields    []serializedFieldPair
	RuleNames []serializedRuleNamePair
}

// ToBytes serializes rs into the versioned, checksummed binary cache
// format. If sourceText is non-empty, its BLAKE3 digest is embedded in
// the payload metadata so a caller can detect a stale cache.
func (rs *RuleSet) ToBytes(sourceText string) ([]byte, error) {
	payload, err := rs.toPayload(sourceText)
	if err != nil {
		return nil, &SerializeError{Op: "build_payload", Err: err}
	}

	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, &SerializeError{Op: "encode_payload", Err: err}
	}

	sum := blake3.Sum256(body)

	header := make([]byte, cacheHeaderSize)
	copy(header[0:4], cacheMagic)
	binary.LittleEndian.PutUint16(header[4:6], cacheFormatVersion)
	binary.LittleEndian.PutUint16(header[6:8], cacheEngineVersion)
	binary.LittleEndian.PutUint32(header[8:12], 0) // flags, reserved
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(body)))
	copy(header[16:32], sum[:16])

	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out, nil
}

func (rs *RuleSet) toPayload(sourceText string) (*serializedPayload, error) {
	var digest []byte
	if sourceText != "" {
		sum := blake3.Sum256([]byte(sourceText))
		digest = sum[:]
	}

	rules := make([]serializedRule, len(rs.rules))
	for i, r := range rs.rules {
		rules[i] = serializedRule{Name: r.name, Condition: flattenExpr(r.condition)}
	}

	terminals := make([]serializedTerminal, len(rs.terminals))
	for i, t := range rs.terminals {
		terminals[i] = serializedTerminal{RuleIndex: rs.terminalIndices[i], Name: t.RuleName, Priority: t.Priority}
	}

	fields := make([]serializedFieldPair, 0, rs.fields.Len())
	for _, p := range rs.fields.Pairs() {
		fields = append(fields, serializedFieldPair{Path: p.Path, Index: p.Index})
	}

	ruleNames := make([]serializedRuleNamePair, 0, len(rs.ruleIndices))
	for name, idx := range rs.ruleIndices {
		ruleNames = append(ruleNames, serializedRuleNamePair{Name: name, Index: idx})
	}
	sortRuleNamePairs(ruleNames)

	return &serializedPayload{
		Metadata: serializedMetadata{
			RuleCount:     len(rules),
			TerminalCount: len(terminals),
			FieldCount:    rs.fields.Len(),
			SourceDigest:  digest,
		},
		Rules:     rules,
		Terminals: terminals,
		Fields:    fields,
		RuleNames: ruleNames,
	}, nil
}

func sortRuleNamePairs(pairs []serializedRuleNamePair) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].Index < pairs[j-1].Index; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

// FromBytes decodes a compiled ruleset previously produced by ToBytes,
// validating the header, checksum, and payload before accepting it.
func FromBytes(data []byte) (*RuleSet, error) {
	if len(data) < cacheHeaderSize {
		return nil, lengthMismatch(cacheHeaderSize, len(data))
	}
	header, body := data[:cacheHeaderSize], data[cacheHeaderSize:]

	if string(header[0:4]) != cacheMagic {
		return nil, badMagic()
	}
	formatVersion := binary.LittleEndian.Uint16(header[4:6])
	if formatVersion != cacheFormatVersion {
		return nil, incompatibleVersion(formatVersion, cacheFormatVersion)
	}
	payloadLen := int(binary.LittleEndian.Uint32(header[12:16]))
	if payloadLen != len(body) {
		return nil, lengthMismatch(payloadLen, len(body))
	}

	sum := blake3.Sum256(body)
	if string(sum[:16]) != string(header[16:32]) {
		return nil, checksumMismatch()
	}

	var payload serializedPayload
	if err := msgpack.Unmarshal(body, &payload); err != nil {
		return nil, decodeFailure(err)
	}

	return payload.toRuleSet()
}

func (p *serializedPayload) toRuleSet() (*RuleSet, error) {
	if p.Metadata.RuleCount != len(p.Rules) {
		return nil, validationFailure("rule count metadata does not match payload")
	}
	if p.Metadata.TerminalCount != len(p.Terminals) {
		return nil, validationFailure("terminal count metadata does not match payload")
	}
	if p.Metadata.FieldCount != len(p.Fields) {
		return nil, validationFailure("field count metadata does not match payload")
	}

	for _, t := range p.Terminals {
		if t.RuleIndex < 0 || t.RuleIndex >= len(p.Rules) {
			return nil, validationFailure("terminal references out-of-range rule index")
		}
	}
	for i := 1; i < len(p.Terminals); i++ {
		if p.Terminals[i].Priority < p.Terminals[i-1].Priority {
			return nil, validationFailure("terminals are not sorted by ascending priority")
		}
	}

	rules := make([]compiledRule, len(p.Rules))
	for i, r := range p.Rules {
		condition, err := unflattenExpr(r.Condition, p.Metadata.FieldCount, i)
		if err != nil {
			return nil, err
		}
		rules[i] = compiledRule{name: r.Name, condition: condition, index: i}
	}

	terminals := make([]Terminal, len(p.Terminals))
	terminalIndices := make([]int, len(p.Terminals))
	for i, t := range p.Terminals {
		terminals[i] = Terminal{RuleName: t.Name, Priority: t.Priority}
		terminalIndices[i] = t.RuleIndex
	}

	fieldPairs := make([]FieldPair, len(p.Fields))
	for i, f := range p.Fields {
		if f.Index < 0 || f.Index >= p.Metadata.FieldCount {
			return nil, validationFailure("field pair index out of range")
		}
		fieldPairs[i] = FieldPair{Path: f.Path, Index: f.Index}
	}

	ruleIndices := make(map[string]int, len(p.RuleNames))
	for _, rn := range p.RuleNames {
		if rn.Index < 0 || rn.Index >= len(p.Rules) {
			return nil, validationFailure("rule name pair index out of range")
		}
		ruleIndices[rn.Name] = rn.Index
	}

	return &RuleSet{
		rules:           rules,
		terminals:       terminals,
		terminalIndices: terminalIndices,
		ruleIndices:     ruleIndices,
		fields:          fieldRegistryFromPairs(fieldPairs),
	}, nil
}

// ToBinaryFile encodes rs and writes it to path.
func (rs *RuleSet) ToBinaryFile(path string, sourceText string) error {
	data, err := rs.ToBytes(sourceText)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FromBinaryFile reads path and decodes the compiled ruleset it contains.
func FromBinaryFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}

func flattenExpr(e compiledExpr) serializedExpr {
	switch ex := e.(type) {
	case compiledCompare:
		v := toSerializedValue(ex.value)
		return serializedExpr{Kind: exprKindCompare, FieldIndex: ex.fieldIndex, Op: ex.op, Value: &v}
	case compiledRuleRef:
		return serializedExpr{Kind: exprKindRuleRef, RuleIndex: ex.index}
	case compiledAnd:
		children := collectAndChildren(ex)
		serializedChildren := make([]serializedExpr, len(children))
		for i, c := range children {
			serializedChildren[i] = flattenExpr(c)
		}
		return serializedExpr{Kind: exprKindAnd, Children: serializedChildren}
	case compiledOr:
		children := collectOrChildren(ex)
		serializedChildren := make([]serializedExpr, len(children))
		for i, c := range children {
			serializedChildren[i] = flattenExpr(c)
		}
		return serializedExpr{Kind: exprKindOr, Children: serializedChildren}
	case compiledNot:
		inner := flattenExpr(ex.inner)
		return serializedExpr{Kind: exprKindNot, Inner: &inner}
	default:
		panic("ooroo: unreachable compiled expression variant")
	}
}

// collectAndChildren flattens a right-associative chain of And nodes
// into its n-ary leaves. It folds only through And children; an Or
// child (or anything else) becomes a leaf of the n-ary group.
func collectAndChildren(e compiledAnd) []compiledExpr {
	return append(flattenAndSide(e.left), flattenAndSide(e.right)...)
}

func flattenAndSide(e compiledExpr) []compiledExpr {
	if and, ok := e.(compiledAnd); ok {
		return collectAndChildren(and)
	}
	return []compiledExpr{e}
}

func collectOrChildren(e compiledOr) []compiledExpr {
	return append(flattenOrSide(e.left), flattenOrSide(e.right)...)
}

func flattenOrSide(e compiledExpr) []compiledExpr {
	if or, ok := e.(compiledOr); ok {
		return collectOrChildren(or)
	}
	return []compiledExpr{e}
}

// unflattenExpr re-expands a serialized expression into a binary tree,
// validating field indices and rule references as it goes. fieldCount
// bounds FieldIndex; ruleIndex is the index of the rule this expression
// belongs to, and every RuleRef within it must point strictly earlier
// in the topological order.
func unflattenExpr(se serializedExpr, fieldCount, ruleIndex int) (compiledExpr, error) {
	switch se.Kind {
	case exprKindCompare:
		if se.Value == nil {
			return nil, validationFailure("compare expression missing value")
		}
		if se.FieldIndex < 0 || se.FieldIndex >= fieldCount {
			return nil, validationFailure("field index out of range")
		}
		return compiledCompare{fieldIndex: se.FieldIndex, op: se.Op, value: fromSerializedValue(*se.Value)}, nil
	case exprKindRuleRef:
		if se.RuleIndex < 0 || se.RuleIndex >= ruleIndex {
			return nil, validationFailure("rule reference is not strictly before its referencing rule")
		}
		return compiledRuleRef{index: se.RuleIndex}, nil
	case exprKindAnd:
		return unflattenNary(se.Children, fieldCount, ruleIndex, func(l, r compiledExpr) compiledExpr {
			return compiledAnd{left: l, right: r}
		})
	case exprKindOr:
		return unflattenNary(se.Children, fieldCount, ruleIndex, func(l, r compiledExpr) compiledExpr {
			return compiledOr{left: l, right: r}
		})
	case exprKindNot:
		if se.Inner == nil {
			return nil, validationFailure("not expression missing inner")
		}
		inner, err := unflattenExpr(*se.Inner, fieldCount, ruleIndex)
		if err != nil {
			return nil, err
		}
		return compiledNot{inner: inner}, nil
	default:
		return nil, validationFailure("unknown expression kind")
	}
}

func unflattenNary(children []serializedExpr, fieldCount, ruleIndex int, combine func(l, r compiledExpr) compiledExpr) (compiledExpr, error) {
	if len(children) == 0 {
		return nil, validationFailure("empty and/or expression")
	}
	result, err := unflattenExpr(children[0], fieldCount, ruleIndex)
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		next, err := unflattenExpr(c, fieldCount, ruleIndex)
		if err != nil {
			return nil, err
		}
		result = combine(result, next)
	}
	return result, nil
}

func toSerializedValue(v Value) serializedValue {
	return serializedValue{Kind: v.kind, I: v.i, F: v.f, B: v.b, S: v.s}
}

func fromSerializedValue(sv serializedValue) Value {
	return Value{kind: sv.Kind, i: sv.I, f: sv.F, b: sv.B, s: sv.S}
}
