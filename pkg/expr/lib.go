package expr

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/cardfont/pkg/finder"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `strip` returns the visible text of a field value.
		// Example: strip(card.sortValue).size() <= 2.
		cel.Function("strip",
			cel.Overload("strip_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(value ref.Val) ref.Val {
					s, ok := value.(types.String).Value().(string)
					if !ok {
						return types.NewErr("strip: invalid string value")
					}

					return types.String(finder.StripField(s))
				}),
			),
		),

		// `countScript` counts the runes of a script in a string.
		// Example: countScript(card.sortValue, "kanji") == 1.
		cel.Function("countScript",
			cel.Overload("count_script_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.IntType,
				cel.BinaryBinding(func(value, script ref.Val) ref.Val {
					s, ok := value.(types.String).Value().(string)
					if !ok {
						return types.NewErr("countScript: invalid string value")
					}

					name, ok := script.(types.String).Value().(string)
					if !ok {
						return types.NewErr("countScript: invalid script name")
					}

					n, err := finder.CountScript(s, name)
					if err != nil {
						return types.NewErr("countScript: %v", err)
					}

					return types.Int(n)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// ConvertToCELValue converts a Go value to a CEL value.
// Unsupported types become null.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue

	case bool:
		return types.Bool(v)

	case int:
		return types.Int(v)

	case int32:
		return types.Int(int64(v))

	case int64:
		return types.Int(v)

	case uint64:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case float64:
		return types.Double(v)

	case string:
		return types.String(v)

	case []string:
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = types.String(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case []any:
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case map[string]any:
		celMap := make(map[ref.Val]ref.Val, len(v))
		for key, val := range v {
			celMap[types.String(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	default:
		return types.NullValue
	}
}
