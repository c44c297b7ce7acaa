package finder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})

		must(v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
			return !active(fl) || ValidatePattern(fl.Field().String()) == nil
		}))
		must(v.RegisterValidation("regexps", func(fl validator.FieldLevel) bool {
			if !active(fl) {
				return true
			}

			for _, p := range strings.Fields(fl.Field().String()) {
				if ValidatePattern(p) != nil {
					return false
				}
			}

			return true
		}))
		must(v.RegisterValidation("script", func(fl validator.FieldLevel) bool {
			if !active(fl) {
				return true
			}

			_, err := scriptTable(fl.Field().String())

			return err == nil
		}))
		must(v.RegisterValidation("comparator", func(fl validator.FieldLevel) bool {
			return compare.Op(fl.Field().String()).Valid()
		}))
		must(v.RegisterValidation("cardstate", func(fl validator.FieldLevel) bool {
			return card.Queue(fl.Field().Int()).Selectable()
		}))

		validate = v
	})

	return validate
}

// active reports whether the predicate holding fl is enabled. The tag
// parameter may name a second bool field that must also be set, such as the
// sub-check a pattern belongs to.
func active(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	for parent.Kind() == reflect.Pointer {
		if parent.IsNil() {
			return false
		}

		parent = parent.Elem()
	}

	if parent.Kind() != reflect.Struct {
		return true
	}

	names := []string{"Enabled"}
	if p := fl.Param(); p != "" {
		names = append(names, p)
	}

	for _, name := range names {
		f := parent.FieldByName(name)
		if f.IsValid() && f.Kind() == reflect.Bool && !f.Bool() {
			return false
		}
	}

	return true
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks every predicate's parameters. Patterns and scripts are
// only checked for enabled predicates and sub-checks, since disabled ones
// never run.
func (rs *RuleSet) Validate() error {
	err := getValidator().Struct(rs)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate rule set %q: %w", rs.Name, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q check (value %v)", trimRoot(fe.Namespace()), fe.Tag(), fe.Value()))
	}

	return fmt.Errorf("validate rule set %q: %s", rs.Name, strings.Join(msgs, "; "))
}

func trimRoot(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}

	return rest
}
