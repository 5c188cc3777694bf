package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the PDF of a PAID sale,
// records it in receipts and optionally enqueues an email to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"naxospos/internal/infra"
	"naxospos/internal/model"
	"naxospos/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxReceiptRetries caps how many times the retry cron re-enqueues a failed receipt.
const MaxReceiptRetries = 5

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID        uint    `json:"sale_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// EmailEnqueuer is the part of *Dispatcher the receipt and report workers need.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	sales        repository.SaleRepository
	receipts     repository.ReceiptRepository
	mail         EmailEnqueuer
	storagePath  string
	businessName string
	now          func() time.Time
}

func NewReceiptWorker(
	sales repository.SaleRepository,
	receipts repository.ReceiptRepository,
	mail EmailEnqueuer,
	storagePath string,
	businessName string,
) *ReceiptWorker {
	return &ReceiptWorker{
		sales:        sales,
		receipts:     receipts,
		mail:         mail,
		storagePath:  storagePath,
		businessName: businessName,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Process handles a single receipt job:
//  1. load the sale with items and payments
//  2. render the PDF
//  3. upsert the receipt row (generated / error with retry schedule)
//  4. enqueue the customer email when an address was given
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, nil, payload.SaleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Uint("sale_id", payload.SaleID).Msg("receipt_worker: sale not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %d: %w", payload.SaleID, err)
	}
	if sale.Status != model.SalePaid {
		log.Warn().Uint("sale_id", sale.ID).Str("status", string(sale.Status)).Msg("receipt_worker: sale not paid, skipping")
		return nil
	}

	rec := &model.Receipt{SaleID: sale.ID, Total: sale.Total, Status: model.ReceiptPending, SentTo: payload.CustomerEmail}
	if prev, err := w.receipts.FindBySaleID(ctx, sale.ID); err == nil {
		rec.RetryCount = prev.RetryCount
	}

	pdfPath, pdfErr := infra.GenerateReceiptPDF(sale, w.businessName, w.storagePath)
	if pdfErr != nil {
		rec.Status = model.ReceiptError
		msg := pdfErr.Error()
		rec.LastError = &msg
		rec.RetryCount++
		next := w.now().Add(computeRetryBackoff(rec.RetryCount))
		rec.NextRetryAt = &next
		if err := w.receipts.Upsert(ctx, rec); err != nil {
			log.Error().Err(err).Uint("sale_id", sale.ID).Msg("receipt_worker: failed to record error")
		}
		return fmt.Errorf("receipt_worker: render sale %d: %w", sale.ID, pdfErr)
	}

	rec.Status = model.ReceiptGenerated
	rec.PDFPath = &pdfPath
	if err := w.receipts.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("receipt_worker: save receipt %d: %w", sale.ID, err)
	}
	log.Info().Uint("sale_id", sale.ID).Str("pdf", pdfPath).Msg("receipt_worker: receipt generated")

	if payload.CustomerEmail != nil && *payload.CustomerEmail != "" && w.mail != nil {
		err := w.mail.EnqueueEmail(ctx, EmailJobPayload{
			ToEmail: *payload.CustomerEmail,
			Subject: fmt.Sprintf("%s - Comprobante de venta #%d", w.businessName, sale.ID),
			Body:    fmt.Sprintf("Gracias por su compra. Total: $%s", sale.Total.StringFixed(2)),
			PDFPath: pdfPath,
		})
		if err != nil {
			log.Warn().Err(err).Uint("sale_id", sale.ID).Msg("receipt_worker: failed to enqueue email")
		}
	}
	return nil
}

// computeRetryBackoff returns 30s, 1m, 2m, 4m… capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := 30 * time.Second << uint(retryCount-1)
	if d > 30*time.Minute || d <= 0 {
		d = 30 * time.Minute
	}
	return d
}
