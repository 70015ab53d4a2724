package report

import (
	"fmt"
	"time"

	"github.com/rshade/fleetco2/internal/emissions"
)

// TargetStatus classifies progress against a reduction target.
type TargetStatus string

const (
	// TargetOnTrack: budget consumption is at or below the elapsed fraction
	// of the target period.
	TargetOnTrack TargetStatus = "on-track"

	// TargetAtRisk: consumption exceeds the elapsed fraction by at most
	// AtRiskMarginFraction of the budget.
	TargetAtRisk TargetStatus = "at-risk"

	// TargetOffTrack: consumption exceeds the elapsed fraction by more than
	// the at-risk margin.
	TargetOffTrack TargetStatus = "off-track"

	// TargetCompleted: the target period has ended.
	TargetCompleted TargetStatus = "completed"
)

// AtRiskMarginFraction is how far (as a fraction of the budget) consumption
// may run ahead of elapsed time before a target tips from at-risk to
// off-track.
const AtRiskMarginFraction = 0.15

// Milestone is one checkpoint of an annual target. Expected value is the
// linear share of the budget at the checkpoint date.
type Milestone struct {
	Date       time.Time
	Label      string
	ExpectedKg float64
	ActualKg   float64

	// Achieved is true when cumulative consumption at the checkpoint was at
	// or below the expected value. Meaningless while Pending.
	Achieved bool

	// Pending is true for checkpoints after the evaluation date.
	Pending bool
}

// TargetProgress is the computed state of one reduction target.
type TargetProgress struct {
	Target      emissions.EmissionTarget
	CurrentKg   float64
	Percent     float64
	RemainingKg float64
	Status      TargetStatus
	Milestones  []Milestone
}

// TrackProgress computes progress for one target.
//
// Status compares the elapsed fraction of the target period (clamped to
// [0, 1]) with the consumed fraction of the budget:
//  1. asOf at or past the end date → completed
//  2. consumed ≤ elapsed → on-track
//  3. consumed − elapsed ≤ AtRiskMarginFraction → at-risk
//  4. otherwise → off-track
//
// cumulativeAt, when non-nil, supplies cumulative consumption at a past date
// and enables milestone evaluation for annual targets (quarterly
// checkpoints). Zero-valued targets report 0%, never a division error.
func TrackProgress(target emissions.EmissionTarget, currentKg float64, asOf time.Time, cumulativeAt func(time.Time) float64) TargetProgress {
	progress := TargetProgress{
		Target:      target,
		CurrentKg:   emissions.Round2(currentKg),
		RemainingKg: emissions.Round2(target.TargetKg - currentKg),
	}
	if target.TargetKg > 0 {
		progress.Percent = emissions.Round2(currentKg / target.TargetKg * 100)
	}

	elapsed := elapsedFraction(target.StartDate, target.EndDate, asOf)
	var consumed float64
	if target.TargetKg > 0 {
		consumed = currentKg / target.TargetKg
	}

	switch {
	case !asOf.Before(target.EndDate):
		progress.Status = TargetCompleted
	case consumed <= elapsed:
		progress.Status = TargetOnTrack
	case consumed-elapsed <= AtRiskMarginFraction:
		progress.Status = TargetAtRisk
	default:
		progress.Status = TargetOffTrack
	}

	if target.Period == emissions.TargetPeriodAnnual && cumulativeAt != nil {
		progress.Milestones = quarterlyMilestones(target, asOf, cumulativeAt)
	}
	return progress
}

// elapsedFraction returns (asOf − start) / (end − start), clamped to [0, 1].
// A degenerate period (end not after start) counts as fully elapsed.
func elapsedFraction(start, end, asOf time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 1
	}
	f := float64(asOf.Sub(start)) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// quarterlyMilestones builds the quarterly checkpoints of an annual target.
// Each expects the linear budget share at its date; checkpoints past asOf are
// pending.
func quarterlyMilestones(target emissions.EmissionTarget, asOf time.Time, cumulativeAt func(time.Time) float64) []Milestone {
	var milestones []Milestone
	for q := 1; ; q++ {
		date := target.StartDate.AddDate(0, 3*q, 0)
		if date.After(target.EndDate) {
			date = target.EndDate
		}

		m := Milestone{
			Date:       date,
			Label:      fmt.Sprintf("Q%d", q),
			ExpectedKg: emissions.Round2(target.TargetKg * elapsedFraction(target.StartDate, target.EndDate, date)),
		}
		if date.After(asOf) {
			m.Pending = true
		} else {
			m.ActualKg = emissions.Round2(cumulativeAt(date))
			m.Achieved = m.ActualKg <= m.ExpectedKg
		}
		milestones = append(milestones, m)

		if !date.Before(target.EndDate) {
			break
		}
	}
	return milestones
}

// EvaluateTargets computes progress for every target in the snapshot using
// the request's rows. Fleet-scope targets measure all rows; carlist-scope
// targets measure only rows belonging to the target's carlist (fan-out
// semantics: a vehicle in several carlists counts fully toward each carlist's
// target).
func EvaluateTargets(snap *Snapshot, rows []Row, asOf time.Time) []TargetProgress {
	results := make([]TargetProgress, 0, len(snap.Targets))
	for _, target := range snap.Targets {
		scoped := rows
		if target.Scope == emissions.TargetScopeCarlist {
			scoped = filterByCarlist(rows, target.CarlistID)
		}

		// Checkpoint cumulative counts fully elapsed periods; the headline
		// current figure also includes the period in progress at asOf.
		cumulativeAt := func(date time.Time) float64 {
			var kg float64
			for _, row := range scoped {
				if !row.Period.End.After(date) {
					kg += row.RealKg
				}
			}
			return kg
		}
		var currentKg float64
		for _, row := range scoped {
			if !row.Period.Start.After(asOf) {
				currentKg += row.RealKg
			}
		}
		results = append(results, TrackProgress(target, currentKg, asOf, cumulativeAt))
	}
	return results
}

func filterByCarlist(rows []Row, carlistID int64) []Row {
	var filtered []Row
	for _, row := range rows {
		if belongsTo(row.Carlists, carlistID) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
