package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues receipt jobs for
// receipts stuck in status 'error' whose next_retry_at is in the past.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"naxospos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ReceiptRepo repository.ReceiptRepository
	Dispatcher  *Dispatcher
	RDB         *redis.Client
}

// StartRetryCron ticks every 30s until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	receipts, err := cfg.ReceiptRepo.ListPendingRetries(ctx, time.Now().UTC(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(receipts) == 0 {
		return
	}

	log.Info().Int("count", len(receipts)).Msg("retry_cron: re-enqueuing failed receipts")

	for i := range receipts {
		rec := &receipts[i]
		payload := ReceiptJobPayload{SaleID: rec.SaleID, CustomerEmail: rec.SentTo}

		if rec.RetryCount >= MaxReceiptRetries {
			raw, _ := json.Marshal(payload)
			SendToDLQ(ctx, cfg.RDB, QueueReceipt, Job{Type: JobReceipt, Payload: raw},
				fmt.Sprintf("max retries (%d) exceeded", MaxReceiptRetries), rec.RetryCount)
			rec.NextRetryAt = nil
			if err := cfg.ReceiptRepo.Upsert(ctx, rec); err != nil {
				log.Error().Err(err).Uint("sale_id", rec.SaleID).Msg("retry_cron: failed to park receipt")
			}
			continue
		}

		if err := cfg.Dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Uint("sale_id", rec.SaleID).Msg("retry_cron: enqueue failed")
			continue
		}
		// Cleared so the next tick does not enqueue it again while the job is in flight.
		rec.NextRetryAt = nil
		if err := cfg.ReceiptRepo.Upsert(ctx, rec); err != nil {
			log.Error().Err(err).Uint("sale_id", rec.SaleID).Msg("retry_cron: failed to update receipt")
		}
	}
}
