package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserveDialogue(t *testing.T) {
	m := NewMetrics()

	m.ObserveTurn("PRESENTING_OPTIONS", "category")
	m.ObserveTurn("PRESENTING_OPTIONS", "category")
	m.ObserveTurn("INITIAL", "unknown")
	m.ObserveOrder(2, 25.98)
	m.TranscriptFailed(errors.New("disk full"))
	m.CheckoutCompleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turns.WithLabelValues("PRESENTING_OPTIONS", "category")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns.WithLabelValues("INITIAL", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assistantOrders))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcriptFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts))
}

func TestMetricsHandlerServesGauges(t *testing.T) {
	m := NewMetrics()
	m.TrackGauge("bistro_active_conversations", "Live conversations", func() float64 { return 4 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bistro_active_conversations 4")
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/menu/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	for _, path := range []string{"/api/v1/menu/1", "/api/v1/menu/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/menu/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
