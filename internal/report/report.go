package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"familybudget/internal/core"
	"familybudget/internal/log"
)

// Region identifiers.
const (
	RegionFull    = "report-content"
	RegionSummary = "summary"
	RegionHistory = "history"
)

const (
	contentTypePDF = "application/pdf"
	fileNameFormat = "Family_Budget_Report_%s.pdf"
	defaultScale   = 2
)

var ErrRegionNotFound = errors.New("report region not found")

// Data is what a region can draw from.
type Data struct {
	Income      core.Money
	Expenses    []core.Expense
	Vision      string
	Mission     string
	History     []core.MonthSnapshot
	Totals      core.Totals
	AdviceText  string
	GeneratedAt time.Time
}

// Document is a finished export ready to be downloaded.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
	Pages       int
}

// RegionFunc lays out a region as lines of text.
type RegionFunc func(Data) []Line

// Exporter renders registered regions to paginated PDF documents.
type Exporter struct {
	mu      sync.RWMutex
	regions map[string]RegionFunc
	scale   int
	logger  *log.Logger
}

type Option func(*Exporter)

func WithScale(scale int) Option {
	return func(e *Exporter) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) { e.logger = l.WithComponent(log.ComponentReport) }
}

// New returns an exporter with the built-in regions registered.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		regions: make(map[string]RegionFunc),
		scale:   defaultScale,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Register(RegionFull, fullReport)
	e.Register(RegionSummary, summaryRegion)
	e.Register(RegionHistory, historyRegion)
	return e
}

// Register adds or replaces a region.
func (e *Exporter) Register(id string, fn RegionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regions[id] = fn
}

// Regions lists the registered identifiers in sorted order.
func (e *Exporter) Regions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.regions))
	for id := range e.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Export renders the region, rasterizes it and lays it out on A4 pages.
func (e *Exporter) Export(ctx context.Context, region string, data Data) (Document, error) {
	e.mu.RLock()
	fn, ok := e.regions[region]
	e.mu.RUnlock()
	if !ok {
		e.logger.WarnContext(ctx, "Unknown report region", log.FieldRegion, region)
		return Document{}, fmt.Errorf("%w: %q", ErrRegionNotFound, region)
	}

	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	start := time.Now()
	img := rasterize(fn(data), e.scale)
	png, err := encodePNG(img)
	if err != nil {
		return Document{}, fmt.Errorf("rasterize %s: %w", region, err)
	}

	bounds := img.Bounds()
	pdf, pages, err := assemble(png, bounds.Dx(), bounds.Dy())
	if err != nil {
		return Document{}, fmt.Errorf("assemble pdf: %w", err)
	}

	doc := Document{
		Name:        FileName(data.GeneratedAt),
		ContentType: contentTypePDF,
		Data:        pdf,
		Pages:       pages,
	}
	e.logger.InfoContext(ctx, "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldRegion, region,
		"pages", pages,
		"bytes", len(pdf),
		log.FieldDuration, time.Since(start).Milliseconds())
	return doc, nil
}

// FileName is the download name for a report generated at t (UTC date).
func FileName(t time.Time) string {
	return fmt.Sprintf(fileNameFormat, t.UTC().Format("2006-01-02"))
}
