package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"naxospos/internal/infra"
	"naxospos/internal/money"
	"naxospos/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ShiftReportJobPayload is the job envelope sent to QueueShiftReport.
type ShiftReportJobPayload struct {
	ShiftID uint `json:"shift_id"`
}

// ShiftReportWorker renders the close report of a shift and mails it to the
// configured manager address.
type ShiftReportWorker struct {
	shifts       repository.ShiftRepository
	mail         EmailEnqueuer
	storagePath  string
	businessName string
	reportEmail  string
}

func NewShiftReportWorker(shifts repository.ShiftRepository, mail EmailEnqueuer, storagePath, businessName, reportEmail string) *ShiftReportWorker {
	return &ShiftReportWorker{
		shifts:       shifts,
		mail:         mail,
		storagePath:  storagePath,
		businessName: businessName,
		reportEmail:  reportEmail,
	}
}

func (w *ShiftReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ShiftReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("shift_report_worker: invalid payload")
		return nil
	}

	shift, err := w.shifts.FindByID(ctx, nil, payload.ShiftID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Uint("shift_id", payload.ShiftID).Msg("shift_report_worker: shift not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("shift_report_worker: load shift %d: %w", payload.ShiftID, err)
	}
	if !shift.IsClosed || shift.Summary == nil || shift.ClosingCashCounted == nil {
		log.Warn().Uint("shift_id", shift.ID).Msg("shift_report_worker: shift not closed, skipping")
		return nil
	}

	diff := money.FormatSigned(money.Difference(*shift.ClosingCashCounted, shift.OpeningFloat, shift.Summary.TotalCash))
	pdfPath, err := infra.GenerateShiftReportPDF(shift, shift.Summary, diff, w.businessName, w.storagePath)
	if err != nil {
		return fmt.Errorf("shift_report_worker: render shift %d: %w", shift.ID, err)
	}
	log.Info().Uint("shift_id", shift.ID).Str("pdf", pdfPath).Str("difference", diff).Msg("shift_report_worker: report generated")

	if w.reportEmail == "" || w.mail == nil {
		return nil
	}
	return w.mail.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.reportEmail,
		Subject: fmt.Sprintf("%s - Cierre de turno #%d", w.businessName, shift.ID),
		Body: fmt.Sprintf("Turno #%d cerrado. Ventas: %d. Total: $%s. Diferencia: %s",
			shift.ID, shift.Summary.TotalOrders, shift.Summary.TotalSales.StringFixed(2), diff),
		PDFPath: pdfPath,
	})
}
