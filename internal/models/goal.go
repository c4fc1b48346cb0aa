package models

// Goal is a numeric target the user accumulates progress toward.
type Goal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Current   float64   `json:"current"`
	Target    float64   `json:"target"`
	Unit      string    `json:"unit"`
	Frequency Frequency `json:"frequency"`
	Deadline  *string   `json:"deadline,omitempty"` // YYYY-MM-DD format
}

// IsComplete reports whether current progress has reached the target.
func (g Goal) IsComplete() bool {
	return g.Current >= g.Target
}

// Percent returns progress toward the target, capped at 100.
func (g Goal) Percent() float64 {
	if g.Target <= 0 {
		return 0
	}
	p := g.Current / g.Target * 100
	if p > 100 {
		return 100
	}
	return p
}
