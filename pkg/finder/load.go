package finder

import (
	"errors"
	"fmt"

	"github.com/macropower/cardfont/pkg/store"
)

// Defaults returns the stored form of a rule set with every predicate
// disabled, for use as [store.Branch] defaults.
func Defaults() map[string]any {
	v, err := store.Plain(New(""))
	if err != nil {
		panic(fmt.Sprintf("encode default rule set: %v", err))
	}

	m, ok := v.(map[string]any)
	if !ok {
		panic(fmt.Sprintf("default rule set encoded as %T", v))
	}

	return m
}

// Load decodes and validates the rule set stored under b. The rule set is
// named after the branch key.
func Load(b *store.Branch) (*RuleSet, error) {
	rs := &RuleSet{}

	err := b.Decode(rs)
	if err != nil {
		return nil, fmt.Errorf("load rule set: %w", err)
	}

	rs.Name = b.Key()
	rs.EnsureDefaults()

	err = rs.Validate()
	if err != nil {
		return nil, err
	}

	return rs, nil
}

// Save validates rs and replaces the subtree stored under b with it.
func Save(b *store.Branch, rs *RuleSet) error {
	c, err := Change(b, rs)
	if err != nil {
		return err
	}

	return b.Tree().Commit(c)
}

// Change validates rs and returns a pending replacement of b's subtree, to
// be applied together with other changes by [store.Tree.Commit].
func Change(b *store.Branch, rs *RuleSet) (store.Change, error) {
	err := rs.Validate()
	if err != nil {
		return store.Change{}, err
	}

	return b.Overwrite(rs), nil
}

// Panel declares the rule set branch named name under panels.
func Panel(panels *store.Branch, name string) *store.Branch {
	return panels.AddBranch(name, Defaults())
}

// LoadAll loads every rule set stored or declared under panels, sorted by
// name. A rule set that fails to load is left out of the result, and its
// error is joined into the returned error; the others are still returned.
func LoadAll(panels *store.Branch) ([]*RuleSet, error) {
	names, err := panels.StoredKeys()
	if err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}

	var errs []error

	out := make([]*RuleSet, 0, len(names))

	for _, name := range names {
		rs, err := Load(Panel(panels, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("rule set %q: %w", name, err))
			continue
		}

		out = append(out, rs)
	}

	return out, errors.Join(errs...)
}
