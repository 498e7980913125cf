package api

import (
	"errors"
	"log"
	"net/http"

	"bistro/internal/cart"
	"bistro/internal/llm"
	"bistro/internal/menu"
	"bistro/internal/orders"
	"bistro/internal/session"
	"bistro/internal/transcript"
	"bistro/internal/users"

	"github.com/gin-gonic/gin"
)

var errForbidden = errors.New("not allowed")

func statusFor(err error) int {
	switch {
	case errors.Is(err, menu.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, transcript.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrAddressRequired),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, users.ErrInvalidRole),
		errors.Is(err, session.ErrInvalidMode),
		errors.Is(err, llm.ErrInvalidChat):
		return http.StatusBadRequest
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status its kind maps to. Internal
// errors are logged and not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
