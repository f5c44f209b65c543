// Package worker hosts the closeout workflow and activities on a task queue.
package worker

import (
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"interview-capture/internal/app/temporal/activities"
	"interview-capture/internal/app/temporal/workflows"
)

// Options tunes the worker
type Options struct {
	Identity      string
	MaxActivities int
}

// New creates a worker with the closeout workflow and activities registered
func New(c client.Client, taskQueue string, acts *activities.CloseoutActivities, opts Options) sdkworker.Worker {
	if opts.MaxActivities <= 0 {
		opts.MaxActivities = 10
	}
	w := sdkworker.New(c, taskQueue, sdkworker.Options{
		Identity:                               opts.Identity,
		MaxConcurrentActivityExecutionSize:     opts.MaxActivities,
		MaxConcurrentWorkflowTaskExecutionSize: 10,
	})
	Register(w, acts)
	return w
}

// Registry is the subset of a worker (or a test environment) that takes registrations
type Registry interface {
	RegisterWorkflow(w interface{})
	RegisterActivity(a interface{})
}

// Register adds the closeout workflow and activities to r
func Register(r Registry, acts *activities.CloseoutActivities) {
	r.RegisterWorkflow(workflows.SessionCloseoutWorkflow)
	r.RegisterActivity(acts)
}
