package services

import (
	"slices"
	"strings"

	"supermarket-dashboard/internal/models"
)

// Summarize derives the KPI triple from a row slice. An empty slice yields
// zero totals, zero transactions, and a nil average rating.
func Summarize(sales []models.Sale) models.Summary {
	var summary models.Summary
	if len(sales) == 0 {
		return summary
	}

	invoices := make(map[string]struct{}, len(sales))
	var ratingSum float64
	for _, sale := range sales {
		summary.TotalSales += sale.Total
		ratingSum += sale.Rating
		invoices[sale.InvoiceID] = struct{}{}
	}

	avg := ratingSum / float64(len(sales))
	summary.AverageRating = &avg
	summary.Transactions = len(invoices)
	return summary
}

// DailySalesSeries groups rows by calendar date, sums Total per day, and
// returns the series sorted by date ascending. Time-of-day never affects
// grouping because only the parsed Date field is used.
func DailySalesSeries(sales []models.Sale) []models.DailySales {
	totals := make(map[string]float64, len(sales))
	for _, sale := range sales {
		totals[sale.Date.Format("2006-01-02")] += sale.Total
	}

	series := make([]models.DailySales, 0, len(totals))
	for day, total := range totals {
		series = append(series, models.DailySales{Date: day, Total: total})
	}
	slices.SortFunc(series, func(a, b models.DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})
	return series
}
