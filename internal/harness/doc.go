// Package harness runs Gherkin feature files against a driver.
//
// Each scenario gets a fresh behaviour.Context whose steps are registered
// from package steps. After every scenario the Context is cleaned up:
// transactions are closed, databases deleted, the driver closed and the
// process time zone restored, so scenarios cannot observe each other.
//
// Scenarios tagged @ignore or @ignore-driver-go are never run.
//
// Results are collected per scenario and per step so callers can print
// them, assert on them, or compare them against golden files:
//
//	result, err := harness.Run(harness.Options{
//	    Paths:  []string{"features/connection"},
//	    Format: "progress",
//	})
package harness
