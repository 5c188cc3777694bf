package service

import (
	"context"
	"errors"
	"time"

	"naxospos/internal/apierror"
	"naxospos/internal/dto"
	"naxospos/internal/infra"
	"naxospos/internal/model"
	"naxospos/internal/money"
	"naxospos/internal/repository"
	"naxospos/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShiftService interface {
	OpenShift(ctx context.Context, userID uint, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	GetActiveShift(ctx context.Context, locationID uint) (*dto.ActiveShiftResponse, error)
	CloseShift(ctx context.Context, shiftID, closedBy uint, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	GetShift(ctx context.Context, shiftID uint) (*dto.ShiftResponse, error)
	ShiftHistory(ctx context.Context, filter dto.ShiftFilter) (*dto.ShiftListResponse, error)
}

type shiftService struct {
	repo       repository.ShiftRepository
	sales      repository.SaleRepository
	catalog    repository.CatalogRepository
	dispatcher *worker.Dispatcher // nil disables shift report jobs
	now        func() time.Time
}

func NewShiftService(
	repo repository.ShiftRepository,
	sales repository.SaleRepository,
	catalog repository.CatalogRepository,
	dispatcher *worker.Dispatcher,
) ShiftService {
	return &shiftService{
		repo:       repo,
		sales:      sales,
		catalog:    catalog,
		dispatcher: dispatcher,
		now:        utcNow,
	}
}

const (
	msgShiftNotFound    = "Turno no encontrado"
	msgShiftAlreadyOpen = "Ya existe un turno abierto para esta sucursal"
)

// ── OpenShift ─────────────────────────────────────────────────────────────────
// The lookup for an open shift only gives a friendly error early; the partial
// unique index on cash_shifts(location_id) WHERE is_closed = false is what
// rejects a concurrent second open.

func (s *shiftService) OpenShift(ctx context.Context, userID uint, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if req.OpeningFloat == nil {
		return nil, apierror.Validation("opening_float es requerido")
	}
	if req.OpeningFloat.IsNegative() {
		return nil, apierror.Validation("opening_float no puede ser negativo")
	}

	if _, err := s.repo.FindOpenByLocation(ctx, nil, req.LocationID); err == nil {
		return nil, apierror.Conflict(msgShiftAlreadyOpen)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, surface("OpenShift", err)
	}

	loc, err := s.catalog.FindLocation(ctx, nil, req.LocationID)
	if err != nil {
		return nil, surface("OpenShift", notFoundOr(err, "Sucursal no encontrada"))
	}
	if !loc.IsActive {
		return nil, apierror.NotFound("Sucursal inactiva")
	}

	shift := &model.CashShift{
		LocationID:   req.LocationID,
		OpenedBy:     userID,
		OpenedAt:     s.now(),
		OpeningFloat: money.Round(*req.OpeningFloat),
		IsClosed:     false,
	}
	if err := s.repo.Create(ctx, nil, shift); err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, apierror.Conflict(msgShiftAlreadyOpen)
		}
		return nil, surface("OpenShift", err)
	}
	log.Info().Uint("shift_id", shift.ID).Uint("location_id", shift.LocationID).Msg("shift opened")
	return shiftToResponse(shift), nil
}

// ── GetActiveShift ────────────────────────────────────────────────────────────

func (s *shiftService) GetActiveShift(ctx context.Context, locationID uint) (*dto.ActiveShiftResponse, error) {
	shift, err := s.repo.FindOpenByLocation(ctx, nil, locationID)
	if err != nil {
		return nil, surface("GetActiveShift", notFoundOr(err, "No hay un turno abierto para esta sucursal"))
	}
	sales, err := s.sales.ListInWindow(ctx, nil, shift.LocationID, shift.OpenedAt, s.now(), "")
	if err != nil {
		return nil, surface("GetActiveShift", err)
	}
	return &dto.ActiveShiftResponse{
		Shift: *shiftToResponse(shift),
		Stats: buildShiftStats(sales),
	}, nil
}

// ── CloseShift ────────────────────────────────────────────────────────────────
// One transaction: conditional close, summary of the PAID sales opened in
// [opened_at, closed_at], summary insert. A second close finds is_closed=true
// and fails before any summary is written.

func (s *shiftService) CloseShift(ctx context.Context, shiftID, closedBy uint, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	if req.ClosingCashCounted == nil {
		return nil, apierror.Validation("closing_cash_counted es requerido")
	}
	if req.ClosingCashCounted.IsNegative() {
		return nil, apierror.Validation("closing_cash_counted no puede ser negativo")
	}
	counted := money.Round(*req.ClosingCashCounted)

	var shift *model.CashShift
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, shiftID)
		if err != nil {
			return notFoundOr(err, msgShiftNotFound)
		}
		if current.IsClosed {
			return apierror.InvalidState("El turno ya esta cerrado")
		}

		closedAt := s.now()
		ok, err := s.repo.Close(ctx, tx, current.ID, closedBy, counted, req.Notes, closedAt)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.InvalidState("El turno ya esta cerrado")
		}

		paid, err := s.sales.ListInWindow(ctx, tx, current.LocationID, current.OpenedAt, closedAt, model.SalePaid)
		if err != nil {
			return err
		}
		summary := summarizeShift(current.ID, paid, closedAt)
		if err := s.repo.CreateSummary(ctx, tx, &summary); err != nil {
			return err
		}

		shift, err = s.repo.FindByID(ctx, tx, current.ID)
		return err
	})
	if err != nil {
		return nil, surface("CloseShift", err)
	}

	resp := shiftToResponse(shift)
	log.Info().
		Uint("shift_id", shift.ID).
		Str("difference", *resp.DifferenceFormatted).
		Msg("shift closed")

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueShiftReport(ctx, worker.ShiftReportJobPayload{ShiftID: shift.ID}); err != nil {
			log.Warn().Err(err).Uint("shift_id", shift.ID).Msg("shift_service: failed to enqueue shift report")
		}
	}
	return resp, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *shiftService) GetShift(ctx context.Context, shiftID uint) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, nil, shiftID)
	if err != nil {
		return nil, surface("GetShift", notFoundOr(err, msgShiftNotFound))
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) ShiftHistory(ctx context.Context, filter dto.ShiftFilter) (*dto.ShiftListResponse, error) {
	shifts, total, err := s.repo.ListClosed(ctx, filter)
	if err != nil {
		return nil, surface("ShiftHistory", err)
	}
	data := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		data = append(data, *shiftToResponse(&shifts[i]))
	}
	return &dto.ShiftListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Aggregation ───────────────────────────────────────────────────────────────

// summarizeShift freezes the tender totals of the PAID sales of a shift.
func summarizeShift(shiftID uint, paid []model.Sale, at time.Time) model.CashShiftSummary {
	byMethod := make(map[model.PaymentMethod]decimal.Decimal, len(model.Methods))
	total := decimal.Zero
	orders := 0
	for _, sale := range paid {
		if sale.Status != model.SalePaid {
			continue
		}
		orders++
		total = total.Add(sale.Total)
		for _, p := range sale.Payments {
			byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
		}
	}
	return model.CashShiftSummary{
		ShiftID:       shiftID,
		TotalSales:    money.Round(total),
		TotalCash:     money.Round(byMethod[model.MethodCash]),
		TotalCard:     money.Round(byMethod[model.MethodCard]),
		TotalTransfer: money.Round(byMethod[model.MethodTransfer]),
		TotalOther:    money.Round(byMethod[model.MethodOther]),
		TotalOrders:   orders,
		ComputedAt:    at,
	}
}
