package middleware

import "github.com/steltz/stepper/pkg/ports"

// Middleware allows wrapping a CompletionSink to add behavior.
type Middleware func(ports.CompletionSink) ports.CompletionSink

// Chain wraps sink so that mws[0] sees a submission first.
func Chain(sink ports.CompletionSink, mws ...Middleware) ports.CompletionSink {
	for i := len(mws) - 1; i >= 0; i-- {
		sink = mws[i](sink)
	}
	return sink
}
