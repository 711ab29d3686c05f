package health

import (
	"context"
	"fmt"
)

// PingCheck adapts a ping function. A failing required dependency reports
// down; an optional one reports degraded.
func PingCheck(ping func(ctx context.Context) error, required bool) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			status := StatusDegraded
			if required {
				status = StatusDown
			}
			return ComponentHealth{Status: status, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

// Disabled reports a dependency that is switched off in configuration.
func Disabled(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusUp, Message: "disabled"}
}

// CorpusCheck reports down until a snapshot exists. describe returns the
// active build ID and document count, or ok == false.
func CorpusCheck(describe func() (buildID string, documents int, ok bool)) Check {
	return func(ctx context.Context) ComponentHealth {
		id, n, ok := describe()
		if !ok {
			return ComponentHealth{Status: StatusDown, Message: "no corpus snapshot"}
		}
		return ComponentHealth{Status: StatusUp, Message: fmt.Sprintf("build %s, %d documents", id, n)}
	}
}
