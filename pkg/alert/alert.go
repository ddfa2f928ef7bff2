// Package alert escalates distraction levels into side-effecting alert
// channels without ever blocking the analysis loop.
//
// Handlers are external collaborators: the contract is "invoke with
// these details, asynchronously, don't let it block or propagate".
package alert

// Details carries context about the triggering observation to a
// handler: at minimum the reason, failure counts, and timestamp.
type Details map[string]any

// Handler is one alert channel. Implementations own their enable flag
// and a single primary action; a failing handler must only affect its
// own invocation.
type Handler interface {
	// Name identifies the channel in logs.
	Name() string

	// Trigger fires the channel's primary action. Called from a
	// spawned task, never from the analysis loop directly.
	Trigger(details Details) error
}
