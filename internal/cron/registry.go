package cron

import (
	"context"
	"fmt"
)

// Job is one maintenance task run on every cycle of the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds uniquely named jobs in run order.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry from jobs, dropping nils and repeated names.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{names: map[string]struct{}{}}
	for _, job := range jobs {
		_ = r.Register(job)
	}
	return r
}

// Register appends job. Job names key metrics and logs, so a name may only be registered once.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("nil job")
	}
	if _, dup := r.names[job.Name()]; dup {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}
