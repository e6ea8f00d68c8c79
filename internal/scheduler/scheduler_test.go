package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

type testJob struct {
	name     string
	schedule string
	err      error
	runs     atomic.Int64
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(testLogger())

	job := &testJob{name: "refresh", schedule: "@every 1h"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Error("Duplicate job accepted")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(testLogger())

	if err := s.AddJob(&testJob{name: "bad", schedule: "not a cron expr"}); err == nil {
		t.Error("Invalid schedule accepted")
	}
}

func TestRunJobExecutesImmediately(t *testing.T) {
	s := New(testLogger())

	job := &testJob{name: "warmup", schedule: "@every 1h"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.RunJob("warmup"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for job.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Job never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	for len(s.History("warmup")) == 0 {
		select {
		case <-deadline:
			t.Fatal("History never recorded")
		case <-time.After(10 * time.Millisecond):
		}
	}

	results := s.History("warmup")
	if !results[0].Success {
		t.Errorf("Result = %+v, want success", results[0])
	}
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(testLogger())
	if err := s.RunJob("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestFailedJobRetriesAndRecordsError(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond

	job := &testJob{name: "flaky", schedule: "@every 1h", err: errors.New("upstream down")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	s.runJob(job)

	if got := job.runs.Load(); got != 4 { // initial + 3 retries
		t.Errorf("Run count = %d, want 4", got)
	}

	results := s.History("flaky")
	if len(results) != 1 || results[0].Success || results[0].Error == "" {
		t.Errorf("History = %+v, want single failed result with error", results)
	}
}
