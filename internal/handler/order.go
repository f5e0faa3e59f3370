package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/middleware"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.GetActor(c)
	order, err := h.orderService.PlaceOrder(c.Request.Context(), req.Lines, req.DeliveryInfo, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID, middleware.GetActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	actor := middleware.GetActor(c)
	orders, err := h.orderService.ListMine(c.Request.Context(), *actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, toOrderResponses(orders), len(orders))
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, toOrderResponses(orders), len(orders))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.SetStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) UpdateDelivery(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req dto.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.SetDelivery(c.Request.Context(), orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Dashboard(c *gin.Context) {
	stats, recent, err := h.orderService.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, dto.DashboardResponse{
		TotalOrders:     stats.TotalOrders,
		PendingOrders:   stats.PendingOrders,
		DeliveredOrders: stats.DeliveredOrders,
		TotalRevenue:    stats.TotalRevenue,
		RecentOrders:    toOrderResponses(recent),
	})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, dto.OrderLineResponse{
			PlantID:   l.PlantID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
			Image:     l.Image,
		})
	}
	return dto.OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		IsGuestOrder:   order.IsGuestOrder,
		Lines:          lines,
		DeliveryInfo:   order.DeliveryInfo,
		TotalPrice:     order.TotalPrice,
		Status:         order.Status,
		DeliveryStatus: order.DeliveryStatus,
		DeliveryDriver: order.DeliveryDriver,
		DeliveryNotes:  order.DeliveryNotes,
		PaidAt:         order.PaidAt,
		DeliveredAt:    order.DeliveredAt,
		CreatedAt:      order.CreatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}
