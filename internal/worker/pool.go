package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt     = "jobs:receipt"
	QueueShiftReport = "jobs:shift_report"
	QueueEmail       = "jobs:email"
)

// Job types carried in the envelope.
const (
	JobReceipt     = "receipt"
	JobShiftReport = "shift_report"
	JobEmail       = "email"
)

// popErrorBackoff is the pause after BRPOP fails for anything but its timeout.
var popErrorBackoff = time.Second

// maxJobAttempts bounds in-process retries before a job lands in the DLQ.
const maxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one decoded job payload. A returned error triggers a retry.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers routes each job type to its handler. Nil handlers drop the job.
type WorkerHandlers struct {
	Receipt     JobHandler
	ShiftReport JobHandler
	Email       JobHandler
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt rendering job for a PAID sale.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, JobReceipt, payload)
}

// EnqueueShiftReport pushes a close report job for a closed shift.
func (d *Dispatcher) EnqueueShiftReport(ctx context.Context, payload ShiftReportJobPayload) error {
	return d.enqueue(ctx, QueueShiftReport, JobShiftReport, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueReceipt, QueueShiftReport, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				backoffAfterPop(ctx, id, err)
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// backoffAfterPop keeps a lost Redis connection from spinning the loop.
// A BRPOP timeout (redis.Nil) returns at once.
func backoffAfterPop(ctx context.Context, id int, err error) {
	if errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return
	}
	log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed, backing off")
	select {
	case <-ctx.Done():
	case <-time.After(popErrorBackoff):
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, Job{Type: "unknown", Payload: json.RawMessage(`null`)}, "malformed envelope: "+err.Error(), 0)
		return
	}

	attempts := 0
	err := withRetry(ctx, maxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := dispatchJob(ctx, handlers, job)
		if err != nil {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempts).Msg("job attempt failed")
		}
		return err
	})
	if err != nil {
		SendToDLQ(ctx, rdb, queue, job, err.Error(), attempts)
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempts", attempts).Msg("job processed")
}

// dispatchJob routes a job to its handler by type.
func dispatchJob(ctx context.Context, handlers *WorkerHandlers, job Job) error {
	var h JobHandler
	switch job.Type {
	case JobReceipt:
		h = handlers.Receipt
	case JobShiftReport:
		h = handlers.ShiftReport
	case JobEmail:
		h = handlers.Email
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	if h == nil {
		log.Warn().Str("type", job.Type).Msg("no handler registered, job dropped")
		return nil
	}
	return h.Process(ctx, job.Payload)
}
