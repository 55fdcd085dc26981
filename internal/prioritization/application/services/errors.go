package services

import "errors"

// Engine-level failure taxonomy. None of these are fatal to the process;
// every caller degrades to skip-and-report.
var (
	// ErrScoringFailed marks a single item's scoring failure during a bulk
	// pass; the item is skipped and the run continues.
	ErrScoringFailed = errors.New("scoring failed for work request")

	// ErrRecalculationInProgress is returned when a bulk recalculation is
	// requested for a scope that already has one in flight.
	ErrRecalculationInProgress = errors.New("recalculation already in progress for scope")

	// ErrRuleEvaluation marks an auto-adjustment rule whose condition or
	// action failed to evaluate; the rule is skipped for that tick.
	ErrRuleEvaluation = errors.New("rule evaluation failed")
)
