package handler

import (
	"net/http"

	"naxospos/internal/dto"
	"naxospos/internal/middleware"
	"naxospos/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// OpenSale godoc
// @Summary      Abrir una venta
// @Description  Crea una venta en estado OPEN para la sucursal indicada. El cajero sale del token.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenSaleRequest true "Sucursal y nota"
// @Success      201  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) OpenSale(c *gin.Context) {
	var req dto.OpenSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OpenSale(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateFullSale godoc
// @Summary      Registrar una venta completa
// @Description  Abre y finaliza una venta en una sola transaccion. Si los pagos no igualan el total no se persiste nada.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateFullSaleRequest true "Items y pagos"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/full [post]
func (h *SalesHandler) CreateFullSale(c *gin.Context) {
	var req dto.CreateFullSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateFullSale(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSales godoc
// @Summary      Listar ventas
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        status      query string false "OPEN | PAID | CANCELLED"
// @Param        location_id query int    false "Sucursal"
// @Param        cashier_id  query int    false "Cajero"
// @Param        from        query string false "Desde YYYY-MM-DD"
// @Param        to          query string false "Hasta YYYY-MM-DD"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSale godoc
// @Summary      Obtener una venta
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path int true "ID de la venta"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Agregar item
// @Description  El precio se toma del catalogo vigente salvo que se indique unit_price.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                 true "ID de la venta"
// @Param        body body dto.SaleItemRequest true "Item"
// @Success      201  {object} dto.SaleItemResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id}/items [post]
func (h *SalesHandler) AddItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SaleItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateItem godoc
// @Summary      Modificar item
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        itemId path int                   true "ID del item"
// @Param        body   body dto.UpdateItemRequest true "Cantidad y/o precio"
// @Success      200    {object} dto.SaleItemResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/sales/items/{itemId} [put]
func (h *SalesHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Quitar item
// @Tags         sales
// @Security     BearerAuth
// @Param        itemId path int true "ID del item"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/items/{itemId} [delete]
func (h *SalesHandler) RemoveItem(c *gin.Context) {
	id, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPayment godoc
// @Summary      Registrar pago
// @Description  method: EFECTIVO | TARJETA | TRANSFERENCIA | OTRO. El pago se valida contra el total al finalizar.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                true "ID de la venta"
// @Param        body body dto.PaymentRequest true "Pago"
// @Success      201  {object} dto.PaymentResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/payments [post]
func (h *SalesHandler) AddPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// FinalizeSale godoc
// @Summary      Finalizar venta
// @Description  Suma items y pagos guardados y nuevos; la suma de pagos debe igualar el total al centavo.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                     true  "ID de la venta"
// @Param        body body dto.FinalizeSaleRequest false "Items y pagos adicionales"
// @Success      200  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/finalize [post]
func (h *SalesHandler) FinalizeSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.FinalizeSaleRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.FinalizeSale(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelSale godoc
// @Summary      Cancelar venta
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                   true  "ID de la venta"
// @Param        body body dto.CancelSaleRequest false "Motivo"
// @Success      200  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/cancel [post]
func (h *SalesHandler) CancelSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelSaleRequest
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.CancelSale(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSale godoc
// @Summary      Eliminar venta
// @Description  Solo ventas OPEN o CANCELLED.
// @Tags         sales
// @Security     BearerAuth
// @Param        id  path int true "ID de la venta"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) DeleteSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
