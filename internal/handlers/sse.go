package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

const (
	maxTableRows     = 50
	defaultMinRating = 5
)

var summaryTemplate = template.Must(template.New("summary").Parse(`
<div id="summary-content">
<div class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><span class="kpi-value">${{.TotalSales}}</span></div>
<div class="kpi-card"><span class="kpi-label">Average Rating</span><span class="kpi-value">{{.AverageRating}}</span></div>
<div class="kpi-card"><span class="kpi-label">Transactions</span><span class="kpi-value">{{.Transactions}}</span></div>
</div>
</div>`))

var salesTableTemplate = template.Must(template.New("salesTable").Parse(`
<div id="sales-content">
<p class="table-note">Showing {{.Shown}} of {{.Matched}} rows (rating &ge; {{.MinRating}})</p>
<table class="modern-table">
<thead><tr><th>Invoice ID</th><th>Branch</th><th>City</th><th>Product line</th><th>Date</th><th>Total</th><th>Rating</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.InvoiceID}}</td>
<td>{{.Branch}}</td>
<td>{{.City}}</td>
<td><span class="category-badge">{{.ProductLine}}</span></td>
<td>{{.Date}}</td>
<td><strong>${{.Total}}</strong></td>
<td>{{.Rating}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	store  *services.Store
	logger *slog.Logger
}

func NewSSEHandlers(store *services.Store, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		logger: logger,
	}
}

type summaryView struct {
	TotalSales    string
	AverageRating string
	Transactions  int
}

type saleRowView struct {
	InvoiceID   string
	Branch      string
	City        string
	ProductLine string
	Date        string
	Total       string
	Rating      string
}

type salesTableView struct {
	Rows      []saleRowView
	Shown     int
	Matched   int
	MinRating string
}

func formatSummary(summary models.Summary) summaryView {
	avg := "–"
	if summary.AverageRating != nil {
		avg = fmt.Sprintf("%.2f", *summary.AverageRating)
	}
	return summaryView{
		TotalSales:    fmt.Sprintf("%.2f", summary.TotalSales),
		AverageRating: avg,
		Transactions:  summary.Transactions,
	}
}

func (h *SSEHandlers) renderSummary(summary models.Summary) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, formatSummary(summary))
	return buf.String(), err
}

func (h *SSEHandlers) renderSalesTable(sales []models.Sale, minRating float64) (string, error) {
	shown := len(sales)
	if shown > maxTableRows {
		shown = maxTableRows
	}

	rows := make([]saleRowView, 0, shown)
	for _, sale := range sales[:shown] {
		rows = append(rows, saleRowView{
			InvoiceID:   sale.InvoiceID,
			Branch:      sale.Branch,
			City:        sale.City,
			ProductLine: sale.ProductLine,
			Date:        sale.Date.Format("2006-01-02"),
			Total:       fmt.Sprintf("%.2f", sale.Total),
			Rating:      fmt.Sprintf("%.1f", sale.Rating),
		})
	}

	view := salesTableView{
		Rows:      rows,
		Shown:     shown,
		Matched:   len(sales),
		MinRating: strconv.FormatFloat(minRating, 'f', -1, 64),
	}

	var buf strings.Builder
	err := salesTableTemplate.Execute(&buf, view)
	return buf.String(), err
}

type dashboardSignals struct {
	MinRating *float64 `json:"minRating"`
}

// minRatingFromRequest resolves the threshold: datastar signals first, then
// the min_rating query parameter, then the slider default.
func (h *SSEHandlers) minRatingFromRequest(r *http.Request) float64 {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err == nil && signals.MinRating != nil {
		return services.ClampRating(*signals.MinRating)
	}

	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			return services.ClampRating(value)
		}
	}

	return defaultMinRating
}

// HandleDashboard re-runs the whole pipeline for the current threshold and
// pushes every region in one SSE response: summary cards, the filtered sales
// table, and the dailyData signal driving the chart.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	minRating := h.minRatingFromRequest(r)

	filtered := h.store.FilterByRating(minRating)
	summary := services.Summarize(filtered)
	series := services.DailySalesSeries(filtered)

	summaryHTML, err := h.renderSummary(summary)
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	sse.PatchElements(summaryHTML)

	tableHTML, err := h.renderSalesTable(filtered, minRating)
	if err != nil {
		h.logger.Error("render sales table", "error", err)
		return
	}
	sse.PatchElements(tableHTML)

	signalData, err := json.Marshal(map[string]any{
		"dailyData": series,
	})
	if err != nil {
		h.logger.Error("marshal daily data", "error", err)
		return
	}
	sse.PatchSignals(signalData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
