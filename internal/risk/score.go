// Package risk derives a disengagement risk score and bucket for one
// employee from a snapshot of their recent activity. Scoring is a pure
// function: the same snapshot always produces the same score, bucket, and
// indicator list, which makes the scorer trivially testable and safe to
// re-run from both the check-in path and the nightly sweep.
package risk

import "fmt"

// Level buckets.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Bucket thresholds over the raw point sum.
const (
	highThreshold   = 60
	mediumThreshold = 30
	maxPoints       = 100
)

// Snapshot captures the inputs to the scorer. WeeklyCheckIns counts
// check-ins inside the look-back window (default 7 days); RecentSurveys
// counts survey responses over the last 30 days. Nil pointers mean "no data".
type Snapshot struct {
	WeeklyCheckIns       int
	AverageMood          *float64
	DaysSinceLastCheckIn *int
	RecentSurveys        int
}

// Result is the scored outcome. Score is the normalized value in [0, 1];
// Points is the raw capped sum; Indicators are the human-readable causes
// surfaced in the risk-assessment view.
type Result struct {
	Score      float64
	Points     int
	Level      string
	Indicators []string
}

// Evaluate applies the additive factor table to a snapshot.
func Evaluate(s Snapshot) Result {
	points := 0
	var indicators []string

	switch {
	case s.WeeklyCheckIns == 0:
		points += 40
		indicators = append(indicators, "no check-ins this week")
	case s.WeeklyCheckIns < 3:
		points += 20
		indicators = append(indicators, fmt.Sprintf("only %d check-ins this week", s.WeeklyCheckIns))
	case s.WeeklyCheckIns < 5:
		points += 10
		indicators = append(indicators, "fewer than 5 check-ins this week")
	}

	switch {
	case s.AverageMood == nil:
		points += 15
		indicators = append(indicators, "no mood data")
	case *s.AverageMood < 2:
		points += 30
		indicators = append(indicators, fmt.Sprintf("very low average mood (%.1f)", *s.AverageMood))
	case *s.AverageMood < 2.5:
		points += 20
		indicators = append(indicators, fmt.Sprintf("low average mood (%.1f)", *s.AverageMood))
	case *s.AverageMood < 3:
		points += 10
		indicators = append(indicators, fmt.Sprintf("below-average mood (%.1f)", *s.AverageMood))
	}

	if s.DaysSinceLastCheckIn != nil {
		switch d := *s.DaysSinceLastCheckIn; {
		case d > 14:
			points += 20
			indicators = append(indicators, fmt.Sprintf("no check-in for %d days", d))
		case d > 7:
			points += 15
			indicators = append(indicators, fmt.Sprintf("no check-in for %d days", d))
		case d > 3:
			points += 5
			indicators = append(indicators, fmt.Sprintf("no check-in for %d days", d))
		}
	}

	switch {
	case s.RecentSurveys == 0:
		points += 10
		indicators = append(indicators, "no survey responses in 30 days")
	case s.RecentSurveys < 2:
		points += 5
		indicators = append(indicators, "low survey participation")
	}

	level := LevelLow
	switch {
	case points >= highThreshold:
		level = LevelHigh
	case points >= mediumThreshold:
		level = LevelMedium
	}

	capped := points
	if capped > maxPoints {
		capped = maxPoints
	}

	return Result{
		Score:      float64(capped) / float64(maxPoints),
		Points:     points,
		Level:      level,
		Indicators: indicators,
	}
}
