package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"supermarket-dashboard/internal/models"
)

const (
	maxWorkers      = 10
	snapshotVersion = "v1"
	snapshotDir     = ".cache"
)

// requiredColumns is the dataset schema. Header matching is
// case-insensitive but every column must be present.
var requiredColumns = []string{
	"invoice id",
	"branch",
	"city",
	"customer type",
	"gender",
	"product line",
	"unit price",
	"quantity",
	"tax 5%",
	"total",
	"date",
	"time",
	"payment",
	"cogs",
	"gross margin percentage",
	"gross income",
	"rating",
}

// dateLayouts accepted for the Date column. The reference dataset uses
// M/D/YYYY; ISO dates are accepted for hand-written fixtures.
var dateLayouts = []string{"1/2/2006", "2006-01-02"}

// Store owns the loaded sales table. The table is written once per load and
// read-only afterwards; every accessor returns a fresh slice so callers can
// never alias the cached rows mutably.
type Store struct {
	mu            sync.RWMutex
	sales         []models.Sale
	csvPath       string
	loadedAt      time.Time
	sourceModTime time.Time
	logger        *slog.Logger
}

func NewStore() *Store {
	return &Store{logger: slog.Default()}
}

// SetSales replaces the table directly, bypassing the CSV loader. Test seam.
func (s *Store) SetSales(sales []models.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = slices.Clone(sales)
	s.loadedAt = time.Now()
}

// tableSnapshot is the gob form of a completed load. SourceModTime is the
// mtime of the CSV the snapshot was built from; a snapshot is only reused
// while the source file is not newer than that.
type tableSnapshot struct {
	Sales         []models.Sale
	SourceModTime time.Time
	LoadedAt      time.Time
}

// LoadFromCSV loads the sales table, preferring a still-valid snapshot over
// re-parsing the file. Any malformed row fails the whole load; there are no
// partial loads and no silently dropped rows.
func (s *Store) LoadFromCSV(ctx context.Context, filename string) error {
	s.csvPath = filename

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	if snap, err := s.loadSnapshot(filename); err == nil && !info.ModTime().After(snap.SourceModTime) {
		s.mu.Lock()
		s.sales = snap.Sales
		s.loadedAt = snap.LoadedAt
		s.sourceModTime = snap.SourceModTime
		s.mu.Unlock()
		s.logger.Info("loaded table from snapshot", "rows", len(snap.Sales))
		return nil
	}

	start := time.Now()
	s.logger.Info("parsing csv file", "filename", filename)

	sales, err := s.parseCSV(ctx, filename)
	if err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}

	s.mu.Lock()
	s.sales = sales
	s.loadedAt = time.Now()
	s.sourceModTime = info.ModTime()
	s.mu.Unlock()

	if err := s.saveSnapshot(filename); err != nil {
		s.logger.Warn("failed to save snapshot", "error", err)
	}

	s.logger.Info("csv load complete",
		"rows", len(sales),
		"duration", time.Since(start))
	return nil
}

func (s *Store) parseCSV(ctx context.Context, filename string) ([]models.Sale, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	cols, err := indexColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := records[1:]
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	// Rows land in their original position, so the table keeps file order
	// even though parsing is fanned out.
	sales := make([]models.Sale, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, record := range rows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sale, err := parseSale(record, cols)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+2, err)
			}
			sales[i] = sale
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sales, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseSale(record []string, cols map[string]int) (models.Sale, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return models.Sale{}, err
	}

	unitPrice, err := parseFloatField("unit price", field("unit price"))
	if err != nil {
		return models.Sale{}, err
	}
	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return models.Sale{}, fmt.Errorf("column %q: %w", "quantity", err)
	}
	tax, err := parseFloatField("tax 5%", field("tax 5%"))
	if err != nil {
		return models.Sale{}, err
	}
	total, err := parseFloatField("total", field("total"))
	if err != nil {
		return models.Sale{}, err
	}
	cogs, err := parseFloatField("cogs", field("cogs"))
	if err != nil {
		return models.Sale{}, err
	}
	margin, err := parseFloatField("gross margin percentage", field("gross margin percentage"))
	if err != nil {
		return models.Sale{}, err
	}
	income, err := parseFloatField("gross income", field("gross income"))
	if err != nil {
		return models.Sale{}, err
	}
	rating, err := parseFloatField("rating", field("rating"))
	if err != nil {
		return models.Sale{}, err
	}

	return models.Sale{
		InvoiceID:      field("invoice id"),
		Branch:         field("branch"),
		City:           field("city"),
		CustomerType:   field("customer type"),
		Gender:         field("gender"),
		ProductLine:    field("product line"),
		UnitPrice:      unitPrice,
		Quantity:       quantity,
		Tax:            tax,
		Total:          total,
		Date:           date,
		Time:           field("time"),
		Payment:        field("payment"),
		COGS:           cogs,
		GrossMarginPct: margin,
		GrossIncome:    income,
		Rating:         rating,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseFloatField(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return f, nil
}

// ClampRating bounds a threshold to the rating scale [0,10].
func ClampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Sales returns a copy of the full loaded table in file order.
func (s *Store) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sales)
}

// FilterByRating returns the rows with Rating >= min, in file order. The
// threshold is clamped to [0,10]; the stored table is never mutated.
func (s *Store) FilterByRating(min float64) []models.Sale {
	min = ClampRating(min)

	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]models.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if sale.Rating >= min {
			filtered = append(filtered, sale)
		}
	}
	return filtered
}

// Snapshot management

func (s *Store) snapshotFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", snapshotDir, strings.ReplaceAll(csvPath, "/", "_"), snapshotVersion)
}

func (s *Store) saveSnapshot(csvPath string) error {
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(s.snapshotFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	s.mu.RLock()
	snap := tableSnapshot{
		Sales:         s.sales,
		SourceModTime: s.sourceModTime,
		LoadedAt:      s.loadedAt,
	}
	s.mu.RUnlock()

	return gob.NewEncoder(file).Encode(snap)
}

func (s *Store) loadSnapshot(csvPath string) (*tableSnapshot, error) {
	file, err := os.Open(s.snapshotFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap tableSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Stats reports table metadata for the admin endpoint.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make(map[string]struct{}, len(s.sales))
	var first, last time.Time
	for _, sale := range s.sales {
		invoices[sale.InvoiceID] = struct{}{}
		if first.IsZero() || sale.Date.Before(first) {
			first = sale.Date
		}
		if sale.Date.After(last) {
			last = sale.Date
		}
	}

	stats := map[string]any{
		"rows":      len(s.sales),
		"invoices":  len(invoices),
		"source":    s.csvPath,
		"loaded_at": s.loadedAt,
	}
	if !first.IsZero() {
		stats["first_date"] = first.Format("2006-01-02")
		stats["last_date"] = last.Format("2006-01-02")
	}
	return stats
}
