package domain

import (
	"time"

	"github.com/guregu/null/v6"
)

// Bar is one daily OHLCV record for a ticker. Every field except Date is
// nullable because the upstream feed reports gaps as nulls.
type Bar struct {
	Date   time.Time  `json:"date"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Int   `json:"volume"`
}

// HasQuote reports whether at least one of the four price fields is present.
// Bars failing this carry no information and are dropped during cleaning.
func (b Bar) HasQuote() bool {
	return b.Open.Valid || b.High.Valid || b.Low.Valid || b.Close.Valid
}

// Summary holds the derived metrics for one fetched series. Change and
// ChangePct require at least two bars with closing prices; PeriodHigh and
// PeriodLow come from the High/Low columns, not from closes.
type Summary struct {
	LastClose  null.Float `json:"last_close"`
	Change     null.Float `json:"change"`
	ChangePct  null.Float `json:"change_pct"`
	PeriodHigh null.Float `json:"period_high"`
	PeriodLow  null.Float `json:"period_low"`
}

// History is the cleaned result of one market-data query.
type History struct {
	Query   Query   `json:"query"`
	Bars    []Bar   `json:"bars"`
	Summary Summary `json:"summary"`
}

// IndicatorSet carries chart overlay series aligned index-for-index with the
// bars they were computed from. Slots where a window is not yet full are null.
type IndicatorSet struct {
	SMA20      []null.Float `json:"sma20,omitempty"`
	SMA50      []null.Float `json:"sma50,omitempty"`
	RSI14      []null.Float `json:"rsi14,omitempty"`
	MACD       []null.Float `json:"macd,omitempty"`
	MACDSignal []null.Float `json:"macd_signal,omitempty"`
	BBUpper    []null.Float `json:"bb_upper,omitempty"`
	BBMiddle   []null.Float `json:"bb_middle,omitempty"`
	BBLower    []null.Float `json:"bb_lower,omitempty"`
}
