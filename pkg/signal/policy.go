package signal

// Confidence policy. Every stage that touches confidence goes through
// Clamp with these constants; adjustments are documented here rather
// than scattered across stages.
//
//	prior (by kind)        readme_update 0.9, commit 0.7, issue 0.6, repo_event 0.5
//	classifier adjustment  -0.10 .. +0.15, then clamp to [0.3, 1.0]
//	enrichment penalty     -0.2 on outright lookup failure, floor 0.3
const (
	ConfidenceFloor   = 0.3
	ConfidenceCeiling = 1.0

	PriorReadmeUpdate = 0.9
	PriorCommit       = 0.7
	PriorIssue        = 0.6
	PriorRepoEvent    = 0.5

	MaxPositiveAdjustment = 0.15
	MaxNegativeAdjustment = -0.10

	EnrichmentFailurePenalty = 0.2
)

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PriorFor returns the fixed prior confidence for a signal kind
func PriorFor(kind Kind) float64 {
	switch kind {
	case KindReadmeUpdate:
		return PriorReadmeUpdate
	case KindCommit:
		return PriorCommit
	case KindIssue:
		return PriorIssue
	case KindRepoEvent:
		return PriorRepoEvent
	default:
		return ConfidenceFloor
	}
}
