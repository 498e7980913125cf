package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) GetCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	s.writeCart(c, key, http.StatusOK)
}

func (s *Server) AddCartItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := s.svc.Carts.AddLine(c.Request.Context(), key, req.ItemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	s.writeCart(c, key, http.StatusOK)
}

// UpdateCartItem sets a line's quantity; zero removes the line
func (s *Server) UpdateCartItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.Carts.UpdateQuantity(c.Request.Context(), key, c.Param("itemId"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	s.writeCart(c, key, http.StatusOK)
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	if err := s.svc.Carts.RemoveLine(c.Request.Context(), key, c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	s.writeCart(c, key, http.StatusOK)
}

func (s *Server) ClearCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	if err := s.svc.Carts.Clear(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	s.writeCart(c, key, http.StatusOK)
}

// MergeCart moves the anonymous cart named by X-Cart-ID into the
// signed-in user's cart
func (s *Server) MergeCart(c *gin.Context) {
	anon := strings.TrimSpace(c.GetHeader(cartHeader))
	if anon == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": cartHeader + " header required"})
		return
	}
	uid := userID(c)
	if err := s.svc.Carts.Merge(c.Request.Context(), "anon:"+anon, uid); err != nil {
		respondError(c, err)
		return
	}
	s.writeCart(c, uid, http.StatusOK)
}

func (s *Server) writeCart(c *gin.Context, key string, status int) {
	cart, err := s.svc.Carts.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, cart)
}
