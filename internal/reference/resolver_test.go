package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDomainStore struct {
	mock.Mock
}

func (m *mockDomainStore) ApproveOrder(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDomainStore) AppendOrderHistory(ctx context.Context, id, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *mockDomainStore) ConfirmConsultation(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeOrder, ParseType("order"))
	assert.Equal(t, TypeOrder, ParseType(" ORDER "))
	assert.Equal(t, TypeConsultation, ParseType("Consultation"))
	assert.Equal(t, TypeUnknown, ParseType("subscription"))
	assert.Equal(t, TypeUnknown, ParseType(""))
}

func TestResolver_EveryTypeHasAction(t *testing.T) {
	r := NewResolver(&mockDomainStore{})
	for _, typ := range Types() {
		assert.False(t, IsNoop(r.Resolve(typ)), "type %q has no action", typ)
	}
	assert.True(t, IsNoop(r.Resolve(TypeUnknown)))
}

func TestApproveOrder_AppendsHistoryOnTransition(t *testing.T) {
	ctx := context.Background()
	store := &mockDomainStore{}
	store.On("ApproveOrder", ctx, "ord_9").Return(true, nil).Once()
	store.On("AppendOrderHistory", ctx, "ord_9", OrderPending, OrderApproved).Return(nil).Once()

	res, err := NewResolver(store).Resolve(TypeOrder).Apply(ctx, "ord_9")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, res.Changed)
	assert.NoError(t, res.HistoryErr)
	store.AssertExpectations(t)
}

func TestApproveOrder_AlreadyApprovedSkipsHistory(t *testing.T) {
	ctx := context.Background()
	store := &mockDomainStore{}
	store.On("ApproveOrder", ctx, "ord_9").Return(false, nil).Once()

	res, err := NewResolver(store).Resolve(TypeOrder).Apply(ctx, "ord_9")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, res.Changed)
	store.AssertNotCalled(t, "AppendOrderHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveOrder_HistoryFailureIsReportedNotReturned(t *testing.T) {
	ctx := context.Background()
	store := &mockDomainStore{}
	store.On("ApproveOrder", ctx, "ord_9").Return(true, nil)
	store.On("AppendOrderHistory", ctx, "ord_9", OrderPending, OrderApproved).Return(errors.New("no table"))

	res, err := NewResolver(store).Resolve(TypeOrder).Apply(ctx, "ord_9")
	require.NoError(t, err)
	assert.EqualError(t, res.HistoryErr, "no table")
}

func TestConfirmConsultation_PropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	store := &mockDomainStore{}
	store.On("ConfirmConsultation", ctx, "c1").Return(false, ErrNotFound)

	_, err := NewResolver(store).Resolve(TypeConsultation).Apply(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}
