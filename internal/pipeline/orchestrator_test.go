package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_ProcessesSubmittedJobs(t *testing.T) {
	f := newWorkerFixture(t, nil, nil, WorkerOptions{})
	o := NewOrchestrator(OrchestratorConfig{Workers: 2, MaxQueueSize: 4, JobTTL: time.Hour}, f.worker, f.metrics)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("j1", "100", "100.txt", []byte("A sentence. Another one."))
	require.NoError(t, o.Submit(job))
	assert.Same(t, job, o.GetJob("j1"))

	require.Eventually(t, func() bool { return job.Snapshot().Status.Terminal() }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
	assert.Equal(t, 0, o.QueueDepth())
}

func TestOrchestrator_QueueFull(t *testing.T) {
	f := newWorkerFixture(t, nil, nil, WorkerOptions{})
	o := NewOrchestrator(OrchestratorConfig{Workers: 1, MaxQueueSize: 1, JobTTL: time.Hour}, f.worker, f.metrics)

	require.NoError(t, o.Submit(NewJob("a", "1", "1.txt", []byte("x"))))
	full := NewJob("b", "2", "2.txt", []byte("y"))
	assert.Error(t, o.Submit(full))
	assert.Equal(t, StatusFailed, full.Snapshot().Status)
	assert.Nil(t, full.FileData())
	assert.Equal(t, 1, o.QueueDepth())
	assert.Contains(t, scrape(t, f.metrics), "bookgest_queue_depth 1")

	o.Stop()
	o.Stop()
}
