// Package export renders donor reports and ships them to object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

var lapsedHeader = []string{"id", "name", "email", "last_gift_date", "total_given"}

// WriteLapsedCSV writes one row per donor. Amounts are in currency units with
// two decimals.
func WriteLapsedCSV(w io.Writer, donors []usecase.LapsedDonor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lapsedHeader); err != nil {
		return err
	}
	for _, ld := range donors {
		d := ld.Donor
		if d == nil {
			continue
		}
		lastGift := ""
		if d.LastGiftDate != nil {
			lastGift = d.LastGiftDate.Format("2006-01-02")
		}
		row := []string{d.ID, d.Name, d.Email, lastGift, formatAmount(d.TotalGivenCents)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %s: %w", d.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}
