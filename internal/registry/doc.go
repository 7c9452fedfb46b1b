// Package registry maps node kinds to their definitions.
//
// A Definition bundles everything the engine needs to create and evaluate a
// node of one kind: its ports for each supported user visible type, the
// evaluation function and an optional ephemeral state factory.
//
// Modules register their kinds into a Registry at startup. The registry is
// then validated once so that every kind the engine can be asked to create
// is complete, and is passed explicitly to the engine rather than living in
// a global.
package registry
