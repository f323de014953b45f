package ooroo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParseError reports a failure to parse DSL source, with the line and
// column at which parsing stopped when the parser reports a position;
// Line and Column are zero otherwise (for example, a negative priority).
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Keyword", Pattern: `\b(rule|priority|OR|or|AND|and|NOT|not|true|false)\b`},
	{Name: "Number", Pattern: `-?\d+(\.\d+)?`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
	{Name: "Operator", Pattern: `==|!=|>=|<=|>|<`},
	{Name: "Punct", Pattern: `[:()]`},
})

// dslFile is the root of a parsed rule definition file: zero or more
// rule definitions in source order.
type dslFile struct {
	Rules []*dslRuleDef `@@*`
}

type dslRuleDef struct {
	Keyword  string     `@"rule"`
	Name     string     `@Ident`
	Priority *int       `( "(" "priority" @Number ")" )?`
	Colon    string     `@":"`
	Expr     *dslOrExpr `@@`
}

type dslOrExpr struct {
	Left *dslAndExpr   `@@`
	Rest []*dslAndExpr `( ( "OR" | "or" ) @@ )*`
}

type dslAndExpr struct {
	Left *dslUnary   `@@`
	Rest []*dslUnary `( ( "AND" | "and" ) @@ )*`
}

type dslUnary struct {
	Not     bool        `@( "NOT" | "not" )?`
	Primary *dslPrimary `@@`
}

type dslPrimary struct {
	Group *dslOrExpr          `  "(" @@ ")"`
	Ref   *dslComparisonOrRef `| @@`
}

type dslComparisonOrRef struct {
	Field string      `@Ident`
	Cmp   *dslCompare `@@?`
}

type dslCompare struct {
	Op    string    `@( "==" | "!=" | ">=" | ">" | "<=" | "<" )`
	Value *dslValue `@@`
}

type dslValue struct {
	Str  *string `  @String`
	Bool *string `| @( "true" | "false" )`
	Num  *string `| @Number`
}

var dslParser = participle.MustBuild[dslFile](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// parseDSL parses source into the Rule/Terminal tuples the compiler
// expects, performing no validation beyond syntax -- duplicate names,
// undefined references, and cycles are caught during compilation.
func parseDSL(source string) ([]Rule, []Terminal, error) {
	file, err := dslParser.ParseString("", source)
	if err != nil {
		if perr, ok := err.(participle.Error); ok {
			pos := perr.Position()
			return nil, nil, &ParseError{Message: perr.Message(), Line: pos.Line, Column: pos.Column}
		}
		return nil, nil, &ParseError{Message: err.Error()}
	}

	var rules []Rule
	var terminals []Terminal
	for _, rd := range file.Rules {
		expr := buildOrExpr(rd.Expr)
		rules = append(rules, Rule{Name: rd.Name, Condition: expr})
		if rd.Priority != nil {
			if *rd.Priority < 0 {
				return nil, nil, &ParseError{Message: fmt.Sprintf("priority for rule %q must not be negative", rd.Name)}
			}
			terminals = append(terminals, Terminal{RuleName: rd.Name, Priority: uint32(*rd.Priority)})
		}
	}
	return rules, terminals, nil
}

func buildOrExpr(e *dslOrExpr) Expr {
	result := buildAndExpr(e.Left)
	for _, rest := range e.Rest {
		result = Or(result, buildAndExpr(rest))
	}
	return result
}

func buildAndExpr(e *dslAndExpr) Expr {
	result := buildUnary(e.Left)
	for _, rest := range e.Rest {
		result = And(result, buildUnary(rest))
	}
	return result
}

func buildUnary(e *dslUnary) Expr {
	inner := buildPrimary(e.Primary)
	if e.Not {
		return Not(inner)
	}
	return inner
}

func buildPrimary(e *dslPrimary) Expr {
	if e.Group != nil {
		return buildOrExpr(e.Group)
	}
	return buildComparisonOrRef(e.Ref)
}

func buildComparisonOrRef(e *dslComparisonOrRef) Expr {
	if e.Cmp == nil {
		return RuleRef(e.Field)
	}
	return CompareExpr{FieldPath: e.Field, Op: parseCompareOp(e.Cmp.Op), Value: buildValue(e.Cmp.Value)}
}

func parseCompareOp(op string) CompareOp {
	switch op {
	case "==":
		return OpEq
	case "!=":
		return OpNeq
	case ">":
		return OpGt
	case ">=":
		return OpGte
	case "<":
		return OpLt
	case "<=":
		return OpLte
	default:
		panic("ooroo: unreachable comparison operator " + op)
	}
}

func buildValue(v *dslValue) Value {
	switch {
	case v.Str != nil:
		return StringValue(unescapeString(*v.Str))
	case v.Bool != nil:
		return BoolValue(*v.Bool == "true")
	case v.Num != nil:
		if strings.Contains(*v.Num, ".") {
			f, _ := strconv.ParseFloat(*v.Num, 64)
			return FloatValue(f)
		}
		i, _ := strconv.ParseInt(*v.Num, 10, 64)
		return IntValue(i)
	default:
		panic("ooroo: unreachable dsl value variant")
	}
}

// unescapeString processes the body of a quoted string literal (with
// surrounding quotes still attached): \" \\ \n \t are recognized
// escapes, any other escape preserves its backslash.
func unescapeString(raw string) string {
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
