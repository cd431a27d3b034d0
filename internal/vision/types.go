package vision

import (
	"fmt"
	"time"
)

// ExtractedLeg is one leg the vision service read off a slip
type ExtractedLeg struct {
	Description  string  `json:"description"`
	AmericanOdds int     `json:"american_odds"`
	Confidence   float64 `json:"confidence"`
}

// ExtractedSlip is the full extraction result for one slip
type ExtractedSlip struct {
	Legs            []ExtractedLeg `json:"legs"`
	StatedTotalOdds *int           `json:"stated_total_odds,omitempty"`
	StatedStake     *float64       `json:"stated_stake,omitempty"`
	Sportsbook      string         `json:"sportsbook,omitempty"`
	Confidence      float64        `json:"confidence"`
}

// validate enforces the boundary contract on a decoded extraction payload
func (s *ExtractedSlip) validate() error {
	if len(s.Legs) == 0 {
		return fmt.Errorf("%w: no legs in extraction payload", ErrMalformedResponse)
	}
	for i, leg := range s.Legs {
		if leg.Description == "" {
			return fmt.Errorf("%w: leg %d missing description", ErrMalformedResponse, i)
		}
		if leg.AmericanOdds == 0 {
			return fmt.Errorf("%w: leg %d missing odds", ErrMalformedResponse, i)
		}
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", ErrMalformedResponse, s.Confidence)
	}
	return nil
}

// SharpSignal classifies the direction of professional money on a line
type SharpSignal string

const (
	SharpSignalWith    SharpSignal = "with_public"
	SharpSignalAgainst SharpSignal = "against_public"
	SharpSignalNeutral SharpSignal = "neutral"
)

// SharpMoneyEntry is one line flagged in a sharp money report
type SharpMoneyEntry struct {
	Market        string      `json:"market"`
	Description   string      `json:"description"`
	PublicBetPct  float64     `json:"public_bet_pct"`
	PublicMoneyPct float64    `json:"public_money_pct"`
	Signal        SharpSignal `json:"signal"`
	LineMove      float64     `json:"line_move"`
}

// SharpMoneyReport is the analytics backend's sharp money scan result
type SharpMoneyReport struct {
	Entries     []SharpMoneyEntry `json:"entries"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func (r *SharpMoneyReport) validate() error {
	for i, e := range r.Entries {
		if e.Description == "" {
			return fmt.Errorf("%w: sharp money entry %d missing description", ErrMalformedResponse, i)
		}
		switch e.Signal {
		case SharpSignalWith, SharpSignalAgainst, SharpSignalNeutral:
		default:
			return fmt.Errorf("%w: sharp money entry %d has unknown signal %q", ErrMalformedResponse, i, e.Signal)
		}
	}
	return nil
}

// HitRateEntry is one market's historical hit rate
type HitRateEntry struct {
	Description string  `json:"description"`
	SampleSize  int     `json:"sample_size"`
	HitRate     float64 `json:"hit_rate"`
}

// HitRateReport is the analytics backend's hit-rate scan result
type HitRateReport struct {
	Entries     []HitRateEntry `json:"entries"`
	GeneratedAt time.Time      `json:"generated_at"`
}

func (r *HitRateReport) validate() error {
	for i, e := range r.Entries {
		if e.Description == "" {
			return fmt.Errorf("%w: hit rate entry %d missing description", ErrMalformedResponse, i)
		}
		if e.HitRate < 0 || e.HitRate > 1 {
			return fmt.Errorf("%w: hit rate entry %d out of range: %v", ErrMalformedResponse, i, e.HitRate)
		}
	}
	return nil
}

// extractSlipRequest is the wire request for slip extraction
type extractSlipRequest struct {
	Frames []string `json:"frames"` // base64-encoded JPEG frames
}

// hitRateRequest is the wire request for a hit-rate scan
type hitRateRequest struct {
	Descriptions []string `json:"descriptions"`
}
