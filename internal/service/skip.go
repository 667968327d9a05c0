package service

import (
	"context"

	"github.com/dukerupert/tally/internal/domain"
)

// Skip reasons reported by RuleSkipEvaluator.
const (
	SkipReasonCustomerInactive = "customer is inactive"
	SkipReasonPastEndDate      = "template is past its end date"
	SkipReasonNoLines          = "template has no line items"
)

// RuleSkipEvaluator is the default SkipEvaluator. It skips templates whose
// customer is inactive, whose next run date is after the template's end date,
// or that have no lines to bill.
type RuleSkipEvaluator struct{}

// NewRuleSkipEvaluator creates the default skip evaluator.
func NewRuleSkipEvaluator() *RuleSkipEvaluator {
	return &RuleSkipEvaluator{}
}

// Evaluate implements domain.SkipEvaluator.
func (e *RuleSkipEvaluator) Evaluate(ctx context.Context, template domain.RecurringTemplate, customer domain.Customer) (domain.SkipDecision, error) {
	if customer.TenantID != template.TenantID {
		return domain.SkipDecision{}, domain.ErrTenantMismatch
	}

	switch {
	case !customer.IsActive:
		return domain.SkipDecision{ShouldSkip: true, Reason: SkipReasonCustomerInactive}, nil
	case template.EndDate != nil && template.NextRunDate.After(*template.EndDate):
		return domain.SkipDecision{ShouldSkip: true, Reason: SkipReasonPastEndDate}, nil
	case len(template.Lines) == 0:
		return domain.SkipDecision{ShouldSkip: true, Reason: SkipReasonNoLines}, nil
	}

	return domain.SkipDecision{}, nil
}
