package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (n *namedJob) Name() string                  { return n.name }
func (n *namedJob) Run(ctx context.Context) error { return nil }

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "a"}, nil, &namedJob{name: "b"})
	registry.Register(nil)
	registry.Register(&namedJob{name: "c"})

	jobs := registry.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	want := []string{"a", "b", "c"}
	for i, job := range jobs {
		if job.Name() != want[i] {
			t.Fatalf("expected job %q at %d, got %q", want[i], i, job.Name())
		}
	}
}

func TestRegistryJobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "a"})
	jobs := registry.Jobs()
	jobs[0] = &namedJob{name: "mutated"}

	if registry.Jobs()[0].Name() != "a" {
		t.Fatal("expected registry unaffected by mutation of returned slice")
	}
}
