package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade_integrity/internal/feature/integrity/domain"
)

// RuleKind identifies one of the five candle integrity rules.
type RuleKind int

const (
	RuleOpen RuleKind = iota
	RuleClose
	RuleHigh
	RuleLow
	RuleVolume
)

type ruleInfo struct {
	name        string
	description string
}

var rules = [...]ruleInfo{
	RuleOpen:   {"OPEN", "Price of the open trade was not equal to the open price of the candle"},
	RuleClose:  {"CLOSE", "Price of the close trade was not equal to the close price of the candle"},
	RuleHigh:   {"HIGH", "Highest price of all trades was not equal to the high price of the candle"},
	RuleLow:    {"LOW", "Lowest price of all trades was not equal to the low price of the candle"},
	RuleVolume: {"VOLUME", "Total volume of trades was not equal to the volume shown in the candle"},
}

// RuleKinds returns every rule in evaluation order.
func RuleKinds() []RuleKind {
	return []RuleKind{RuleOpen, RuleClose, RuleHigh, RuleLow, RuleVolume}
}

func (k RuleKind) valid() bool {
	return k >= RuleOpen && int(k) < len(rules)
}

func (k RuleKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
	return rules[k].name
}

// Description returns the human-readable explanation attached to the rule.
func (k RuleKind) Description() string {
	if !k.valid() {
		return ""
	}
	return rules[k].description
}

// ParseRuleKind converts a rule name such as "OPEN" back to a RuleKind.
func ParseRuleKind(s string) (RuleKind, error) {
	for i, r := range rules {
		if r.name == s {
			return RuleKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownRule, s)
}

func (k RuleKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownRule, int(k))
	}
	return []byte(rules[k].name), nil
}

func (k *RuleKind) UnmarshalText(b []byte) error {
	parsed, err := ParseRuleKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IntervalGroup pairs a candle with the trades whose timestamps fall inside its window,
// sorted ascending by timestamp.
type IntervalGroup struct {
	Candle Candle
	Trades []Trade
}

// Violation records one failed rule for one interval.
// Trade is set for OPEN/CLOSE/HIGH/LOW, ComputedVolume for VOLUME.
// TradeCount is the number of trades matched to the interval; it survives
// storage even when Group.Trades is not reloaded.
type Violation struct {
	Rule           RuleKind
	Group          IntervalGroup
	TradeCount     int
	Trade          *Trade
	ComputedVolume *decimal.Decimal
}

// ValidationReport is the outcome of checking a candle series against its trades.
type ValidationReport struct {
	Violations            []Violation
	AnalyzedIntervalCount int
}

// HasViolations reports whether any rule failed.
func (r ValidationReport) HasViolations() bool {
	return len(r.Violations) > 0
}

// CountByRule tallies violations per rule kind.
func (r ValidationReport) CountByRule() map[RuleKind]int {
	out := make(map[RuleKind]int, len(rules))
	for _, v := range r.Violations {
		out[v.Rule]++
	}
	return out
}
