package models

// Leg represents one wagered outcome within a parlay
type Leg struct {
	Description        string  `db:"description" json:"description" validate:"required"`
	AmericanOdds       int     `db:"american_odds" json:"american_odds" validate:"required"`
	DecimalOdds        float64 `db:"decimal_odds" json:"decimal_odds"`
	ImpliedProbability float64 `db:"implied_probability" json:"implied_probability"`
}

// IsFavorite reports whether the leg is priced as a favorite
func (l *Leg) IsFavorite() bool {
	return l.AmericanOdds < 0
}
