package compare

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ErrUnknownOp is returned for a comparator symbol outside the dispatch table.
var ErrUnknownOp = errors.New("unknown comparator")

// Op is a comparator symbol. The zero Op behaves as [Equal].
type Op string

const (
	Less         Op = "<"
	LessEqual    Op = "<="
	Equal        Op = "=="
	GreaterEqual Op = ">="
	Greater      Op = ">"
	NotEqual     Op = "!="
)

// All lists every comparator in display order.
var All = []Op{Less, LessEqual, Equal, GreaterEqual, Greater, NotEqual}

var table = map[Op]func(a, b float64) bool{
	Less:         func(a, b float64) bool { return a < b },
	LessEqual:    func(a, b float64) bool { return a <= b },
	Equal:        func(a, b float64) bool { return a == b },
	GreaterEqual: func(a, b float64) bool { return a >= b },
	Greater:      func(a, b float64) bool { return a > b },
	NotEqual:     func(a, b float64) bool { return a != b },
}

// Parse returns the [Op] for a symbol, or [ErrUnknownOp].
func Parse(s string) (Op, error) {
	op := Op(s).orDefault()
	if _, ok := table[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}

	return op, nil
}

// Valid reports whether op is in the dispatch table.
func (op Op) Valid() bool {
	_, ok := table[op.orDefault()]

	return ok
}

// Apply evaluates `a op b`.
func (op Op) Apply(a, b float64) (bool, error) {
	fn, ok := table[op.orDefault()]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownOp, string(op))
	}

	return fn(a, b), nil
}

// Ints evaluates `a op b` for integer operands.
func (op Op) Ints(a, b int) (bool, error) {
	return op.Apply(float64(a), float64(b))
}

func (op Op) String() string {
	return string(op.orDefault())
}

func (op Op) orDefault() Op {
	if op == "" {
		return Equal
	}

	return op
}

// MarshalText implements [encoding.TextMarshaler].
func (op Op) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, string(op))
	}

	return []byte(op.orDefault()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
// An empty value decodes to [Equal].
func (op *Op) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*op = parsed

	return nil
}

// JSONSchema restricts the schema to the known symbols.
func (Op) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(All))
	for _, op := range All {
		enum = append(enum, string(op))
	}

	return &jsonschema.Schema{
		Type:  "string",
		Title: "Comparator",
		Enum:  enum,
	}
}
