package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

type fakeUnit struct {
	commits, rollbacks int
	commitErr          error
}

func (u *fakeUnit) Properties() domainbooking.PropertyRepository { return nil }
func (u *fakeUnit) Bookings() domainbooking.Repository           { return nil }
func (u *fakeUnit) Guests() domainguest.Repository               { return nil }

func (u *fakeUnit) Commit(context.Context) error {
	u.commits++
	return u.commitErr
}

func (u *fakeUnit) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type fakeFactory struct {
	units []*fakeUnit
	next  *fakeUnit
}

func (f *fakeFactory) Begin(context.Context, TxOptions) (UnitOfWork, error) {
	u := f.next
	if u == nil {
		u = &fakeUnit{}
	}
	f.units = append(f.units, u)
	return u, nil
}

func TestRunCommitsOnSuccess(t *testing.T) {
	f := &fakeFactory{}
	var seen UnitOfWork
	err := Run(context.Background(), f, TxOptions{}, func(ctx context.Context, unit UnitOfWork) error {
		ambient, ok := FromContext(ctx)
		require.True(t, ok)
		assert.Same(t, unit, ambient)
		seen = unit
		return nil
	})
	require.NoError(t, err)
	require.Len(t, f.units, 1)
	assert.Same(t, f.units[0], seen)
	assert.Equal(t, 1, f.units[0].commits)
	assert.Zero(t, f.units[0].rollbacks)
}

func TestRunRollsBackOnError(t *testing.T) {
	f := &fakeFactory{}
	boom := errors.New("boom")
	err := Run(context.Background(), f, TxOptions{}, func(context.Context, UnitOfWork) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Zero(t, f.units[0].commits)
	assert.Equal(t, 1, f.units[0].rollbacks)
}

func TestRunSurfacesCommitConflict(t *testing.T) {
	f := &fakeFactory{next: &fakeUnit{commitErr: ErrConcurrentUpdate}}
	err := Run(context.Background(), f, TxOptions{}, func(context.Context, UnitOfWork) error { return nil })
	require.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Equal(t, 1, f.units[0].rollbacks)
}

func TestRunReusesAmbientUnit(t *testing.T) {
	f := &fakeFactory{}
	err := Run(context.Background(), f, TxOptions{}, func(ctx context.Context, outer UnitOfWork) error {
		return Run(ctx, f, TxOptions{}, func(_ context.Context, inner UnitOfWork) error {
			assert.Same(t, outer, inner)
			return nil
		})
	})
	require.NoError(t, err)
	require.Len(t, f.units, 1)
	assert.Equal(t, 1, f.units[0].commits)
}

func TestRunWithoutFactory(t *testing.T) {
	err := Run(context.Background(), nil, TxOptions{}, func(context.Context, UnitOfWork) error { return nil })
	assert.ErrorIs(t, err, ErrUnitOfWorkMissing)
}
