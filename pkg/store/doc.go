// Package store implements a path-addressed configuration tree.
//
// A [Tree] persists a nested map through a [Backend]. Consumers address
// subtrees through [Branch] values, which declare default values, merge stored
// values over those defaults on read, and persist changes with batched writes.
// A branch can be renamed in place, which moves its stored subtree and keeps
// every descendant branch addressing the new location.
package store
