package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/WiseCart620/wisecartfrontend-sub001/internal/jobs"
)

type stubWarmer struct {
	entries int
	err     error
	calls   int
}

func (s *stubWarmer) Warm(context.Context) (int, error) {
	s.calls++
	return s.entries, s.err
}

type stubPurger struct {
	got time.Duration
	n   int64
	err error
}

func (s *stubPurger) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	s.got = olderThan
	return s.n, s.err
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestCatalogWarmupRecordsEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	warmer := &stubWarmer{entries: 42}
	job := &CatalogWarmupJob{Catalog: warmer, Metrics: jobmetrics.NewMetrics(reg)}

	task, err := NewCatalogWarmupTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, warmer.calls)

	count, err := testutil.GatherAndCount(reg, "wisecart_job_records_processed_total", "wisecart_jobs_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCatalogWarmupPropagatesFailure(t *testing.T) {
	boom := errors.New("backend down")
	job := &CatalogWarmupJob{Catalog: &stubWarmer{err: boom}}

	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogWarmup, nil))
	require.ErrorIs(t, err, boom)
}

func TestCatalogWarmupSkipsRetryOnBadPayload(t *testing.T) {
	job := &CatalogWarmupJob{Catalog: &stubWarmer{}}
	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestIdempotencyCleanupRetention(t *testing.T) {
	purger := &stubPurger{n: 3}
	job := &IdempotencyCleanupJob{Store: purger, Retention: 24 * time.Hour}

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	require.Equal(t, 24*time.Hour, purger.got)

	task, err := NewIdempotencyCleanupTask(time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, time.Hour, purger.got)

	job.Retention = 0
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	require.Equal(t, DefaultIdempotencyRetention, purger.got)
}

func TestUnconfiguredJobsFail(t *testing.T) {
	require.Error(t, (&IdempotencyCleanupJob{}).Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	require.Error(t, (&CatalogWarmupJob{}).Handle(context.Background(), asynq.NewTask(TaskCatalogWarmup, nil)))
}

func TestEnqueueCatalogWarmupCollapsesDuplicates(t *testing.T) {
	stub := &stubEnqueuer{}
	client := &Client{client: stub, unique: time.Minute}

	require.NoError(t, client.EnqueueCatalogWarmup(context.Background()))
	require.Len(t, stub.tasks, 1)
	require.Equal(t, TaskCatalogWarmup, stub.tasks[0].Type())
	var payload CatalogWarmupPayload
	require.NoError(t, json.Unmarshal(stub.tasks[0].Payload(), &payload))
	require.Equal(t, "manual", payload.Reason)

	stub.err = asynq.ErrDuplicateTask
	require.NoError(t, client.EnqueueCatalogWarmup(context.Background()))

	stub.err = errors.New("redis down")
	require.Error(t, client.EnqueueCatalogWarmup(context.Background()))
}

func TestHealthReportsQueue(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		body      string
	}{
		{"no inspector", nil, http.StatusOK, `"queue":"default"`},
		{"pending", stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4}}, http.StatusOK, `"pending":4`},
		{"empty queue", stubInspector{err: asynq.ErrQueueNotFound}, http.StatusOK, `"pending":0`},
		{"redis down", stubInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, `"success":false`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rec.Code)
			body, _ := io.ReadAll(rec.Body)
			require.Contains(t, string(body), tc.body)
		})
	}
}
