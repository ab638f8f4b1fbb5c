// Package csvfile writes audit inputs and violation summaries as CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
)

const fileTimeLayout = "20060102150405"

var (
	candleHeader    = []string{"interval_start", "interval_marker", "open", "high", "low", "close", "volume"}
	tradeHeader     = []string{"trade_time", "trade_timestamp", "price", "quantity", "side", "trade_id"}
	violationHeader = []string{
		"rule", "description", "interval_start", "interval_marker",
		"open", "high", "low", "close", "volume", "trades_in_interval",
		"trade_timestamp", "trade_price", "trade_quantity", "trade_side", "trade_id", "computed_volume",
	}
)

// Writer exports each audit into three files under Dir:
// candles_<inst>_<tf>_<ts>.csv, trades_<inst>_<tf>_<ts>.csv and violations_<inst>_<tf>_<ts>.csv.
type Writer struct {
	Dir string
}

var _ usecase.Exporter = (*Writer)(nil)

// NewWriter returns a Writer rooted at dir. The directory is created on first export.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Export writes the candle series, the trade list and the violation summary of result.
func (w *Writer) Export(ctx context.Context, candles entity.CandleSeries, trades entity.TradeList, result *entity.AuditResult) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	stamp := result.CreatedAt.UTC().Format(fileTimeLayout)
	suffix := fmt.Sprintf("%s_%s_%s.csv", sanitize(result.Instrument), result.Interval, stamp)

	files := []struct {
		name string
		rows [][]string
	}{
		{"candles_" + suffix, candleRows(candles.Candles)},
		{"trades_" + suffix, tradeRows(trades.Trades)},
		{"violations_" + suffix, violationRows(result.Report.Violations)},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.Dir, f.name)
		if err := writeFile(path, f.rows); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		slog.Debug("exported csv", "path", path, "rows", len(f.rows)-1)
	}
	return nil
}

func candleRows(candles []entity.Candle) [][]string {
	rows := make([][]string, 0, len(candles)+1)
	rows = append(rows, candleHeader)
	for _, c := range candles {
		rows = append(rows, []string{
			c.Start().Format(time.RFC3339),
			strconv.FormatInt(c.IntervalMarker, 10),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
		})
	}
	return rows
}

func tradeRows(trades []entity.Trade) [][]string {
	rows := make([][]string, 0, len(trades)+1)
	rows = append(rows, tradeHeader)
	for _, t := range trades {
		rows = append(rows, []string{
			time.UnixMilli(t.Timestamp).UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(t.Timestamp, 10),
			t.Price.String(),
			t.Quantity.String(),
			string(t.Side),
			strconv.FormatInt(t.ID, 10),
		})
	}
	return rows
}

func violationRows(violations []entity.Violation) [][]string {
	rows := make([][]string, 0, len(violations)+1)
	rows = append(rows, violationHeader)
	for _, v := range violations {
		c := v.Group.Candle
		row := []string{
			v.Rule.String(),
			v.Rule.Description(),
			c.Start().Format(time.RFC3339),
			strconv.FormatInt(c.IntervalMarker, 10),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
			strconv.Itoa(v.TradeCount),
		}
		if v.Trade != nil {
			row = append(row,
				strconv.FormatInt(v.Trade.Timestamp, 10),
				v.Trade.Price.String(),
				v.Trade.Quantity.String(),
				string(v.Trade.Side),
				strconv.FormatInt(v.Trade.ID, 10),
			)
		} else {
			row = append(row, "", "", "", "", "")
		}
		if v.ComputedVolume != nil {
			row = append(row, v.ComputedVolume.String())
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return rows
}

func writeFile(path string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
}
