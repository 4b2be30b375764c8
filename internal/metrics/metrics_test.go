package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRecordedEventsAreExposed(t *testing.T) {
	RecordLoyalty(EventMimoRedeemed)
	RecordPackage(EventPackageExpired, 2)
	RecordTransaction("income", "Venda de Pacote", decimal.RequireFromString("120.50"))
	RecordUnresolvedClient()

	body := scrape(t)
	assert.Contains(t, body, `salon_loyalty_events_total{event="mimo_redeemed"}`)
	assert.Contains(t, body, `salon_packages_events_total{event="expired"}`)
	assert.Contains(t, body, `salon_cashflow_amount_total{category="Venda de Pacote",type="income"}`)
	assert.Contains(t, body, `salon_appointments_unresolved_clients_total`)
}

func TestRecordPackageIgnoresZero(t *testing.T) {
	RecordPackage(EventPackageReversed, 0)
	assert.NotContains(t, scrape(t), `salon_packages_events_total{event="reversed"}`)
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, scrape(t), `salon_http_requests_total{method="GET",path="/ping/:id",status="200"}`)
}
