// Package reference maps a payment's (type, id) reference onto the single domain
// update a confirmed payment triggers.
package reference

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by a DomainStore when the referenced row does not exist.
var ErrNotFound = errors.New("reference target not found")

type Type string

const (
	TypeUnknown      Type = ""
	TypeOrder        Type = "order"
	TypeConsultation Type = "consultation"
)

// Domain status values written on payment success.
const (
	OrderPending          = "pending"
	OrderApproved         = "approved"
	ConsultationConfirmed = "confirmed"
)

// Types lists every reference type the resolver must handle.
func Types() []Type {
	return []Type{TypeOrder, TypeConsultation}
}

// ParseType is case-insensitive; anything unrecognised is TypeUnknown.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types() {
		if t == known {
			return t
		}
	}
	return TypeUnknown
}

func (t Type) Valid() bool { return ParseType(string(t)) != TypeUnknown }

// DomainStore is the write side of the application's order and consultation tables.
// The status setters report whether the row actually changed so history is only
// appended on a real transition.
type DomainStore interface {
	ApproveOrder(ctx context.Context, orderID string) (changed bool, err error)
	AppendOrderHistory(ctx context.Context, orderID, from, to string) error
	ConfirmConsultation(ctx context.Context, consultationID string) (changed bool, err error)
}
