package marketdata

import (
	"context"
	"errors"
	"strings"
)

// Lookup errors. Unauthorized must force a session clear and a return to
// the login view; UnknownSymbol is a coverage limitation, not a failure.
var (
	ErrUnauthorized  = errors.New("lookup rejected: session not authorized")
	ErrUnknownSymbol = errors.New("ticker not found")
	ErrUnavailable   = errors.New("lookup service unavailable")
)

// TickerRecord is one daily OHLCV bar as stored in the data lake.
// Immutable once decoded.
type TickerRecord struct {
	Ticker   string  `json:"Ticker"`
	Open     float64 `json:"Open"`
	High     float64 `json:"High"`
	Low      float64 `json:"Low"`
	Close    float64 `json:"Close"`
	AdjClose float64 `json:"Adj Close"`
	Volume   int64   `json:"Volume"`
	Date     string  `json:"Date"`
}

// lakeEntry is the envelope the lake wraps around each record
type lakeEntry struct {
	Attribute TickerRecord `json:"attribute"`
}

// Backend fetches raw ticker records. The lake backend needs the session's
// bearer token; the direct S3 backend ignores it.
type Backend interface {
	Lookup(ctx context.Context, token, symbol string) ([]TickerRecord, error)
}

// filterBySymbol keeps only records whose Ticker matches symbol,
// case-insensitively. An empty result means the lake holds no bars for the
// requested range, which callers treat as "no data" rather than an error.
func filterBySymbol(entries []lakeEntry, symbol string) []TickerRecord {
	records := make([]TickerRecord, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.Attribute.Ticker, symbol) {
			records = append(records, e.Attribute)
		}
	}
	return records
}
