package quotes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Quote is one per-symbol record of the upstream market snapshot.
// Price fields are optional because the feed omits them for untraded symbols.
type Quote struct {
	Symbol              string   `json:"symbol"`
	CompanyName         string   `json:"companyName,omitempty"`
	Sector              string   `json:"sector,omitempty"`
	LastTradedPrice     *float64 `json:"lastTradedPrice,omitempty"`
	ClosingPrice        *float64 `json:"closingPrice,omitempty"`
	LTP                 *float64 `json:"ltp,omitempty"`
	PreviousClose       *float64 `json:"previousClose,omitempty"`
	OpenPrice           *float64 `json:"openPrice,omitempty"`
	HighPrice           *float64 `json:"highPrice,omitempty"`
	LowPrice            *float64 `json:"lowPrice,omitempty"`
	Change              *float64 `json:"change,omitempty"`
	ChangePercent       *float64 `json:"changePercent,omitempty"`
	TotalTradedQuantity *float64 `json:"totalTradedQuantity,omitempty"`
	Turnover            *float64 `json:"turnover,omitempty"`
}

// LivePrice walks lastTradedPrice, closingPrice, ltp and returns the first positive value.
func (q Quote) LivePrice() (float64, bool) {
	for _, p := range []*float64{q.LastTradedPrice, q.ClosingPrice, q.LTP} {
		if p != nil && *p > 0 {
			return *p, true
		}
	}
	return 0, false
}

// Snapshot indexes quotes by upper-cased symbol. A nil Snapshot is valid and empty.
type Snapshot map[string]Quote

func (s Snapshot) Lookup(symbol string) (Quote, bool) {
	if s == nil {
		return Quote{}, false
	}
	q, ok := s[strings.ToUpper(strings.TrimSpace(symbol))]
	return q, ok
}

// LivePrice resolves the live price for symbol, if the snapshot has one.
func (s Snapshot) LivePrice(symbol string) (float64, bool) {
	q, ok := s.Lookup(symbol)
	if !ok {
		return 0, false
	}
	return q.LivePrice()
}

// NewSnapshot indexes records by symbol. Records without a symbol are skipped;
// on duplicates the later record wins.
func NewSnapshot(records []Quote) Snapshot {
	snap := make(Snapshot, len(records))
	for _, q := range records {
		key := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if key == "" {
			continue
		}
		snap[key] = q
	}
	return snap
}

// Decode parses an upstream payload. Both a bare array and an object with a
// "data" array are accepted.
func Decode(raw []byte) ([]Quote, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var records []Quote
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode quote array: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Data *[]Quote `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode quote envelope: %w", err)
	}
	if wrapped.Data == nil {
		return nil, fmt.Errorf("decode quote envelope: missing data array")
	}
	return *wrapped.Data, nil
}
