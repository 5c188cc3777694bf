package handler

import (
	"net/http"

	"naxospos/internal/dto"
	"naxospos/internal/middleware"
	"naxospos/internal/service"

	"github.com/gin-gonic/gin"
)

type ShiftsHandler struct{ svc service.ShiftService }

func NewShiftsHandler(svc service.ShiftService) *ShiftsHandler { return &ShiftsHandler{svc: svc} }

// OpenShift godoc
// @Summary Abre un turno de caja
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenShiftRequest true "Sucursal y fondo inicial"
// @Success 201 {object} dto.ShiftResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts [post]
func (h *ShiftsHandler) OpenShift(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OpenShift(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetActiveShift godoc
// @Summary Turno abierto de una sucursal con estadisticas en vivo
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param locationId path int true "ID de la sucursal"
// @Success 200 {object} dto.ActiveShiftResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/active/{locationId} [get]
func (h *ShiftsHandler) GetActiveShift(c *gin.Context) {
	locationID, ok := parseID(c, "locationId")
	if !ok {
		return
	}
	resp, err := h.svc.GetActiveShift(c.Request.Context(), locationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CloseShift godoc
// @Summary Cierra el turno con el efectivo contado
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del turno"
// @Param body body dto.CloseShiftRequest true "Efectivo contado"
// @Success 200 {object} dto.ShiftResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/shifts/{id}/close [put]
func (h *ShiftsHandler) CloseShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CloseShift(c.Request.Context(), id, middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetShift godoc
// @Summary Obtener un turno
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del turno"
// @Success 200 {object} dto.ShiftResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id} [get]
func (h *ShiftsHandler) GetShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetShift(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShiftHistory godoc
// @Summary Historial de turnos cerrados
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param location_id query int false "Sucursal"
// @Param from query string false "Desde YYYY-MM-DD"
// @Param to query string false "Hasta YYYY-MM-DD"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Registros por página (default 20)"
// @Success 200 {object} dto.ShiftListResponse
// @Router /v1/shifts [get]
func (h *ShiftsHandler) ShiftHistory(c *gin.Context) {
	var filter dto.ShiftFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ShiftHistory(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
