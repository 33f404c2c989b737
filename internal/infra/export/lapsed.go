package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

type LapsedLister interface {
	List(ctx context.Context, q usecase.LapsedQuery) ([]usecase.LapsedDonor, error)
}

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
}

type LapsedExporter struct {
	lapsed   LapsedLister
	uploader Uploader
	clock    usecase.Clock
}

func NewLapsedExporter(lapsed LapsedLister, uploader Uploader, clock usecase.Clock) *LapsedExporter {
	if clock == nil {
		clock = usecase.SystemClock{}
	}
	return &LapsedExporter{lapsed: lapsed, uploader: uploader, clock: clock}
}

type ExportResult struct {
	Key   string
	Count int
}

// Export uploads the organization's LYBUNT donors as of asOfDate
// (YYYY-MM-DD, today when empty).
func (e *LapsedExporter) Export(ctx context.Context, organizationID, asOfDate string) (*ExportResult, error) {
	donors, err := e.lapsed.List(ctx, usecase.LapsedQuery{OrganizationID: organizationID, AsOfDate: asOfDate})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteLapsedCSV(&buf, donors); err != nil {
		return nil, err
	}

	year := e.clock.Now().Year()
	if t, err := time.Parse("2006-01-02", asOfDate); err == nil {
		year = t.Year()
	}
	key := fmt.Sprintf("exports/lapsed/%s/%d-%s.csv", organizationID, year, uuid.NewString())
	if err := e.uploader.Upload(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, Count: len(donors)}, nil
}
