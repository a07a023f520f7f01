// Package behaviour holds the per-scenario state shared by step definitions.
//
// A fresh Context is created for every scenario and passed explicitly to
// each step. Nothing here is global except the process time zone, which the
// set time-zone step changes and Cleanup restores:
//
//	c := behaviour.New(behaviour.Params{NewDriver: open})
//	defer c.Cleanup(ctx)
//
// The Context is not safe for concurrent use. Steps run one at a time; the
// parallel steps only touch it after their goroutines have joined.
package behaviour
