// Package steps implements the step definitions scenario authors write
// against.
//
// Every step is a plain function taking the scenario's *behaviour.Context
// and the step arguments as the strings captured from the step text. Steps
// parse their own arguments and report failures as returned errors, which
// godog turns into a failed scenario. Register binds the functions to their
// patterns on a godog.ScenarioContext; Definitions lists the patterns.
package steps
