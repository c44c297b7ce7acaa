package store

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/macropower/cardfont/pkg/yaml"
)

var (
	// ErrExists is returned when renaming a branch onto an existing key.
	ErrExists = errors.New("key already exists")
	// ErrRoot is returned for operations that are not valid on the root branch.
	ErrRoot = errors.New("operation not valid on the root branch")
	// ErrNotMap is returned when a stored value on a branch path is not a map.
	ErrNotMap = errors.New("stored value is not a map")
)

// Tree is a configuration tree persisted through a [Backend]. All backend
// access is serialized, so branches may be shared between goroutines.
type Tree struct {
	backend Backend
	root    *Branch
	mu      sync.Mutex
}

// New creates a [Tree] on top of backend.
func New(backend Backend) *Tree {
	t := &Tree{backend: backend}
	t.root = &Branch{tree: t, defaults: map[string]any{}}

	return t
}

// Root returns the root branch.
func (t *Tree) Root() *Branch {
	return t.root
}

// Branch addresses a subtree of a [Tree].
type Branch struct {
	tree     *Tree
	parent   *Branch
	defaults map[string]any
	key      string
	children []*Branch
}

// Pair is a single key/value assignment for [Branch.Write].
type Pair struct {
	Value any
	Key   string
}

// Set creates a [Pair].
func Set(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// AddBranch declares a child branch with the given defaults. Adding a key
// that already has a branch returns the existing branch with the new defaults
// merged over its previous ones.
func (b *Branch) AddBranch(key string, defaults map[string]any) *Branch {
	b.tree.mu.Lock()
	defer b.tree.mu.Unlock()

	for _, child := range b.children {
		if child.key == key {
			child.defaults = mergeMaps(child.defaults, defaults)
			return child
		}
	}

	child := &Branch{
		tree:     b.tree,
		parent:   b,
		key:      key,
		defaults: cloneMap(defaults),
	}
	b.children = append(b.children, child)

	return child
}

// Tree returns the tree the branch belongs to.
func (b *Branch) Tree() *Tree {
	return b.tree
}

// Key returns the branch's own key. The root branch has an empty key.
func (b *Branch) Key() string {
	return b.key
}

// Keys returns the path from the root to this branch.
func (b *Branch) Keys() []string {
	var keys []string
	for cur := b; cur.parent != nil; cur = cur.parent {
		keys = append(keys, cur.key)
	}

	slices.Reverse(keys)

	return keys
}

// Path returns [Branch.Keys] joined with "/".
func (b *Branch) Path() string {
	return strings.Join(b.Keys(), "/")
}

// Read returns the stored value for key, or its declared default.
func (b *Branch) Read(key string) (any, error) {
	all, err := b.ReadAll()
	if err != nil {
		return nil, err
	}

	return all[key], nil
}

// ReadAll returns the stored subtree merged over the declared defaults of the
// branch and all of its descendants.
func (b *Branch) ReadAll() (map[string]any, error) {
	b.tree.mu.Lock()
	defer b.tree.mu.Unlock()

	data, err := b.tree.backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", b.Path(), err)
	}

	stored, err := lookup(data, b.Keys())
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", b.Path(), err)
	}

	return mergeMaps(b.effectiveDefaults(), stored), nil
}

// Write stores all pairs with a single load and a single save.
func (b *Branch) Write(pairs ...Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	return b.tree.Commit(b.Assign(pairs...))
}

// Replace overwrites the branch's stored subtree with v.
func (b *Branch) Replace(v any) error {
	return b.tree.Commit(b.Overwrite(v))
}

// Change is a pending modification of a branch, applied by [Tree.Commit].
type Change struct {
	branch  *Branch
	value   any
	pairs   []Pair
	replace bool
}

// Assign creates a [Change] that sets each pair under the branch.
func (b *Branch) Assign(pairs ...Pair) Change {
	return Change{branch: b, pairs: pairs}
}

// Overwrite creates a [Change] that replaces the branch's stored subtree.
func (b *Branch) Overwrite(v any) Change {
	return Change{branch: b, value: v, replace: true}
}

// Commit applies all changes with a single load and a single save. Either
// every change is persisted or none is.
func (t *Tree) Commit(changes ...Change) error {
	type prepared struct {
		change Change
		values []any
		value  map[string]any
	}

	ready := make([]prepared, 0, len(changes))

	for _, c := range changes {
		p := prepared{change: c}

		if c.replace {
			v, err := Plain(c.value)
			if err != nil {
				return fmt.Errorf("write %q: %w", c.branch.Path(), err)
			}

			m, ok := v.(map[string]any)
			if !ok && v != nil {
				return fmt.Errorf("write %q: %w: %T", c.branch.Path(), ErrNotMap, c.value)
			}

			p.value = m
		}

		for _, pair := range c.pairs {
			v, err := Plain(pair.Value)
			if err != nil {
				return fmt.Errorf("write %q: %s: %w", c.branch.Path(), pair.Key, err)
			}

			p.values = append(p.values, v)
		}

		ready = append(ready, p)
	}

	return t.update(nil, func(data map[string]any) error {
		for _, p := range ready {
			keys := p.change.branch.Keys()

			if p.change.replace {
				if len(keys) == 0 {
					clear(data)
					maps.Copy(data, p.value)

					continue
				}

				parent, err := ensure(data, keys[:len(keys)-1])
				if err != nil {
					return err
				}

				parent[keys[len(keys)-1]] = cloneMap(p.value)

				continue
			}

			node, err := ensure(data, keys)
			if err != nil {
				return err
			}

			for i, pair := range p.change.pairs {
				node[pair.Key] = p.values[i]
			}
		}

		return nil
	})
}

// Rename moves the branch's stored subtree to newKey under the same parent.
// Descendant branches follow, since their paths are derived from this one.
func (b *Branch) Rename(newKey string) error {
	if b.parent == nil {
		return ErrRoot
	}
	if newKey == b.key {
		return nil
	}

	renamed := func() { b.key = newKey }

	err := b.tree.update(renamed, func(data map[string]any) error {
		parent, err := ensure(data, b.parent.Keys())
		if err != nil {
			return err
		}

		if _, ok := parent[newKey]; ok {
			return fmt.Errorf("%w: %q", ErrExists, newKey)
		}
		if b.parent.hasChild(newKey) {
			return fmt.Errorf("%w: %q", ErrExists, newKey)
		}

		if v, ok := parent[b.key]; ok {
			parent[newKey] = v
			delete(parent, b.key)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("rename %q: %w", b.Path(), err)
	}

	return nil
}

// Delete removes the branch's stored subtree and detaches the branch from
// its parent.
func (b *Branch) Delete() error {
	if b.parent == nil {
		return ErrRoot
	}

	detach := func() {
		b.parent.children = slices.DeleteFunc(b.parent.children, func(c *Branch) bool {
			return c == b
		})
	}

	err := b.tree.update(detach, func(data map[string]any) error {
		parent, err := lookup(data, b.parent.Keys())
		if err != nil {
			return err
		}

		delete(parent, b.key)

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", b.Path(), err)
	}

	return nil
}

// Decode reads the merged subtree into v, which is decoded the same way as a
// YAML document.
func (b *Branch) Decode(v any) error {
	all, err := b.ReadAll()
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = yaml.NewEncoder(buf).Encode(all)
	if err != nil {
		return fmt.Errorf("encode %q: %w", b.Path(), err)
	}

	err = yaml.NewDecoder(buf).Decode(v)
	if err != nil {
		return fmt.Errorf("decode %q: %w", b.Path(), err)
	}

	return nil
}

// Children returns the declared child branches.
func (b *Branch) Children() []*Branch {
	b.tree.mu.Lock()
	defer b.tree.mu.Unlock()

	return slices.Clone(b.children)
}

// StoredKeys returns the keys stored directly under the branch, sorted.
func (b *Branch) StoredKeys() ([]string, error) {
	all, err := b.ReadAll()
	if err != nil {
		return nil, err
	}

	return slices.Sorted(maps.Keys(all)), nil
}

// update loads the stored tree, applies fn and saves the result, all under
// the tree lock. saved, when set, runs under the same lock once the save has
// succeeded, so branch state only changes together with the stored data.
func (t *Tree) update(saved func(), fn func(data map[string]any) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.backend.Load()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	err = fn(data)
	if err != nil {
		return err
	}

	err = t.backend.Save(data)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if saved != nil {
		saved()
	}

	return nil
}

func (b *Branch) hasChild(key string) bool {
	for _, c := range b.children {
		if c.key == key {
			return true
		}
	}

	return false
}

// effectiveDefaults must be called with the tree lock held.
func (b *Branch) effectiveDefaults() map[string]any {
	out := cloneMap(b.defaults)
	for _, child := range b.children {
		sub, _ := out[child.key].(map[string]any)
		out[child.key] = mergeMaps(sub, child.effectiveDefaults())
	}

	return out
}

func lookup(data map[string]any, keys []string) (map[string]any, error) {
	node := data
	for i, k := range keys {
		v, ok := node[k]
		if !ok || v == nil {
			return map[string]any{}, nil
		}

		next, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotMap, strings.Join(keys[:i+1], "/"))
		}

		node = next
	}

	return node, nil
}

func ensure(data map[string]any, keys []string) (map[string]any, error) {
	node := data
	for i, k := range keys {
		v, ok := node[k]
		if !ok || v == nil {
			next := map[string]any{}
			node[k] = next
			node = next

			continue
		}

		next, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotMap, strings.Join(keys[:i+1], "/"))
		}

		node = next
	}

	return node, nil
}
