package finder

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ErrInvalidLogic is returned when a [Logic] is neither [LogicOr] nor
// [LogicAnd].
var ErrInvalidLogic = errors.New("invalid logic")

// Logic combines a list of boolean results.
type Logic string

const (
	LogicOr  Logic = "or"
	LogicAnd Logic = "and"
)

// Combine returns true if any (or) or all (and) results are true.
func (l Logic) Combine(results []bool) (bool, error) {
	switch l {
	case LogicOr:
		for _, r := range results {
			if r {
				return true, nil
			}
		}

		return false, nil

	case LogicAnd:
		for _, r := range results {
			if !r {
				return false, nil
			}
		}

		return true, nil
	}

	return false, fmt.Errorf("%w: %q", ErrInvalidLogic, string(l))
}

func (Logic) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Title:       "Logic",
		Description: "How results are combined: or (any) or and (all).",
		Enum:        []any{string(LogicOr), string(LogicAnd)},
		Default:     string(LogicOr),
	}
}
