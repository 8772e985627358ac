package remote

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Tiliavir/timesheet-ledger/internal/model"
)

// Submitter is the customer service contract.
type Submitter interface {
	SubmitCustomer(ctx context.Context, p CustomerPayload) (Result, error)
}

// Failure records why one customer was not accepted.
type Failure struct {
	Customer string
	Err      error
}

// SyncResult holds counters for a sync run.
type SyncResult struct {
	Succeeded int
	Failed    int
	Failures  []Failure
}

// PayloadFor maps a customer to its submit payload.
func PayloadFor(c model.Customer) CustomerPayload {
	return CustomerPayload{Name: c.Name, Email: c.Email, CompanyName: c.CompanyName}
}

// SyncCustomers submits each customer once. Every outcome is independent:
// a failed customer is counted and the batch continues. There are no retries
// here; callers rerun the sync for the failures they care about.
func SyncCustomers(ctx context.Context, s Submitter, customers []model.Customer, l *slog.Logger) SyncResult {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	var result SyncResult
	for _, c := range customers {
		res, err := s.SubmitCustomer(ctx, PayloadFor(c))
		if err == nil && !res.Success {
			msg := res.Error
			if msg == "" {
				msg = "rejected by customer service"
			}
			err = errors.New(msg)
		}
		if err != nil {
			l.Warn("customer sync failed", slog.String("customer", c.Name), slog.String("error", err.Error()))
			result.Failed++
			result.Failures = append(result.Failures, Failure{Customer: c.Name, Err: err})
			continue
		}
		l.Debug("customer synced", slog.String("customer", c.Name))
		result.Succeeded++
	}
	return result
}
