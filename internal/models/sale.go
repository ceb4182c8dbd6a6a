package models

import "time"

// Sale is one row of the supermarket sales dataset. Date holds the parsed
// calendar date; Time keeps the on-disk time-of-day string untouched.
type Sale struct {
	InvoiceID      string    `json:"invoice_id"`
	Branch         string    `json:"branch"`
	City           string    `json:"city"`
	CustomerType   string    `json:"customer_type"`
	Gender         string    `json:"gender"`
	ProductLine    string    `json:"product_line"`
	UnitPrice      float64   `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	Tax            float64   `json:"tax"`
	Total          float64   `json:"total"`
	Date           time.Time `json:"date"`
	Time           string    `json:"time"`
	Payment        string    `json:"payment"`
	COGS           float64   `json:"cogs"`
	GrossMarginPct float64   `json:"gross_margin_percentage"`
	GrossIncome    float64   `json:"gross_income"`
	Rating         float64   `json:"rating"`
}

// Summary holds the three dashboard KPIs. AverageRating is nil when the
// summarized table is empty, so it serializes as JSON null instead of a
// divide-by-zero artifact.
type Summary struct {
	TotalSales    float64  `json:"total_sales"`
	AverageRating *float64 `json:"average_rating"`
	Transactions  int      `json:"transactions"`
}

// DailySales is one point of the sales-over-time series. Date is the
// calendar day in 2006-01-02 form, which sorts lexically as chronologically.
type DailySales struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}
