// Package ooroo compiles declarative boolean rulesets -- built either
// through a fluent Go API or parsed from a small textual DSL -- into an
// immutable, dependency-ordered form that can be evaluated repeatedly
// against ad-hoc or pre-indexed input without revisiting validation.
//
// A RuleSetBuilder assembles named rules and terminal priorities;
// RuleSetBuilder.Compile (or the FromDSL/FromFile convenience
// constructors) validates references, detects cycles, and produces a
// RuleSet safe for concurrent evaluation. RuleSet.ToBytes/FromBytes
// serialize a compiled ruleset to a checksummed binary cache so
// compilation need not be repeated on every process start.
package ooroo
