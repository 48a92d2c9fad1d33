package domain

// Grade is the letter grade derived from an overall health score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeForScore maps an overall score to its letter grade.
// Boundaries are fixed constants, inclusive on the lower bound:
// A=[90,100] B=[75,89] C=[60,74] D=[40,59] F=[0,39].
func GradeForScore(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 75:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}

// Trend labels the direction of a token's overall score versus the
// immediately preceding score record.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// HealthScore is one immutable scored record for a token, derived from
// exactly one AggregatedBucket plus the freshest holder/social context.
// Natural key: (TokenSymbol, TimestampMs). A new scoring cycle always
// produces a new record; prior records are never mutated.
type HealthScore struct {
	TokenSymbol string
	TimestampMs int64 // equals the scored bucket's TimestampMs

	// Sub-scores, each in [0, 100].
	VolumeScore    int
	LiquidityScore int
	SpreadScore    int
	HolderScore    int
	StabilityScore int

	Overall int // weighted sum, rounded, clamped to [0, 100]
	Grade   Grade
	Trend   Trend

	// StalePillars lists inputs that were older than their staleness
	// threshold when scored (e.g. "holders", "social"). The composite is
	// still produced from last-known values.
	StalePillars []string

	// InsufficientHistory is set when the volume benchmark had too few
	// samples and a neutral volume sub-score was substituted.
	InsufficientHistory bool
}
