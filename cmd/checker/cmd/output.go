package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/transport/http/dto"
)

// printResult writes the audit report as indented JSON or as a human-readable table.
func printResult(w io.Writer, res *entity.AuditResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.FromAuditResult(res, true))
	}

	fmt.Fprintf(w, "%s %s: %s (candles=%d trades=%d analyzed=%d violations=%d)\n",
		res.Instrument, res.Interval, res.Status,
		res.NumCandles, res.NumTrades, res.Report.AnalyzedIntervalCount, len(res.Report.Violations))
	if !res.Report.HasViolations() {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  RULE\tINTERVAL START\tCANDLE\tOBSERVED\tTRADE")
	for _, v := range res.Report.Violations {
		expected, observed, trade := describe(v)
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			v.Rule, v.Group.Candle.Start().Format(time.RFC3339), expected, observed, trade)
	}
	return tw.Flush()
}

// describe returns the candle value the rule checks, the value observed in the trades
// and a short reference to the cited trade.
func describe(v entity.Violation) (expected, observed, trade string) {
	c := v.Group.Candle
	switch v.Rule {
	case entity.RuleOpen:
		expected = "open=" + c.Open.String()
	case entity.RuleClose:
		expected = "close=" + c.Close.String()
	case entity.RuleHigh:
		expected = "high=" + c.High.String()
	case entity.RuleLow:
		expected = "low=" + c.Low.String()
	case entity.RuleVolume:
		expected = "volume=" + c.Volume.String()
	}

	trade = "-"
	switch {
	case v.Trade != nil:
		observed = "price=" + v.Trade.Price.String()
		trade = fmt.Sprintf("id=%d ts=%d %s", v.Trade.ID, v.Trade.Timestamp, v.Trade.Side)
	case v.ComputedVolume != nil:
		observed = "sum=" + v.ComputedVolume.String()
	default:
		observed = "-"
	}
	return expected, observed, trade
}
