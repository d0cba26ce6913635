package inference

// Scoring constants
const (
	MaxConfidence   = 1.0
	MinConfidence   = 0.0
	RouterIncrement = 0.16
	RouterThreshold = 10
)

// Confidence is the pair of scores assigned to a MAC
type Confidence struct {
	Machine float64
	Router  float64
}

// IsRouter reports whether the router score strictly exceeds the machine score
func (c Confidence) IsRouter() bool {
	return c.Router > c.Machine
}

// Score rates a MAC seen with n distinct IPs. Every IP adds RouterIncrement
// to the router score; at RouterThreshold IPs, or once the router score
// reaches MaxConfidence, the MAC is certainly a router.
func Score(n int) Confidence {
	if n >= RouterThreshold {
		return Confidence{Machine: MinConfidence, Router: MaxConfidence}
	}

	router := float64(n) * RouterIncrement
	if router >= MaxConfidence {
		return Confidence{Machine: MinConfidence, Router: MaxConfidence}
	}

	return Confidence{Machine: MaxConfidence - router, Router: router}
}
