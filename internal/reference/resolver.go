package reference

import (
	"context"
	"fmt"
)

// Result describes what an Action did. HistoryErr is informational only.
type Result struct {
	Type       Type
	Applied    bool
	Changed    bool
	HistoryErr error
}

// Action applies the domain update for one reference id.
type Action interface {
	Apply(ctx context.Context, id string) (Result, error)
}

type Resolver struct {
	Store DomainStore
}

func NewResolver(store DomainStore) *Resolver {
	return &Resolver{Store: store}
}

// Resolve returns the action for t. Adding a Type to Types() without a case here
// fails TestResolver_EveryTypeHasAction.
func (r *Resolver) Resolve(t Type) Action {
	switch t {
	case TypeOrder:
		return approveOrder{store: r.Store}
	case TypeConsultation:
		return confirmConsultation{store: r.Store}
	default:
		return noop{}
	}
}

type approveOrder struct{ store DomainStore }

func (a approveOrder) Apply(ctx context.Context, id string) (Result, error) {
	res := Result{Type: TypeOrder}
	changed, err := a.store.ApproveOrder(ctx, id)
	if err != nil {
		return res, fmt.Errorf("approve order %s: %w", id, err)
	}
	res.Applied = true
	res.Changed = changed
	if changed {
		res.HistoryErr = a.store.AppendOrderHistory(ctx, id, OrderPending, OrderApproved)
	}
	return res, nil
}

type confirmConsultation struct{ store DomainStore }

func (c confirmConsultation) Apply(ctx context.Context, id string) (Result, error) {
	res := Result{Type: TypeConsultation}
	changed, err := c.store.ConfirmConsultation(ctx, id)
	if err != nil {
		return res, fmt.Errorf("confirm consultation %s: %w", id, err)
	}
	res.Applied = true
	res.Changed = changed
	return res, nil
}

type noop struct{}

func (noop) Apply(context.Context, string) (Result, error) { return Result{}, nil }

// IsNoop reports whether a is the unknown-type action.
func IsNoop(a Action) bool {
	_, ok := a.(noop)
	return ok
}
