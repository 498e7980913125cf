package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Address string `json:"address"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout places an order from the caller's cart. Without an address in
// the body the profile address is used.
func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	uid := userID(c)
	address := strings.TrimSpace(req.Address)
	if address == "" {
		profile, err := s.svc.Users.Get(c.Request.Context(), uid)
		if err != nil {
			respondError(c, err)
			return
		}
		address = profile.Address
	}

	order, err := s.svc.Orders.Checkout(c.Request.Context(), uid, uid, address)
	if err != nil {
		respondError(c, err)
		return
	}
	if s.svc.Metrics != nil {
		s.svc.Metrics.CheckoutCompleted()
	}
	s.svc.Monitor.IncrementMetric("orders_placed", 1)
	c.JSON(http.StatusCreated, order)
}

func (s *Server) ListMyOrders(c *gin.Context) {
	list, err := s.svc.Orders.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetOrder returns an order to its owner or an admin
func (s *Server) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := s.svc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	uid := userID(c)
	if order.UserID != uid {
		admin, err := s.svc.Users.IsAdmin(c.Request.Context(), uid)
		if err != nil {
			respondError(c, err)
			return
		}
		if !admin {
			respondError(c, errForbidden)
			return
		}
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) ListAllOrders(c *gin.Context) {
	list, err := s.svc.Orders.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.svc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}
