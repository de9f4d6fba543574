// Package config implements the scoped, hierarchical configuration store
// described in the specification's scheduler-adjacent layer: a chain of
// parent-linked Scopes, a virtual environment-variable fallback scope, and
// list/bool coercion helpers shared by the task and glob layers.
//
// A Scope tree always bottoms out at an immutable root constant scope whose
// parent is a virtual scope that resolves unset keys against the process
// environment (preferring an "${APP_ID}_KEY" form over bare "KEY"),
// matching the reference implementation's lookup order.
package config
