package mocks

import (
	"context"

	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/stretchr/testify/mock"
)

// CannonRepository is a mock for cannon.Repository.
type CannonRepository struct {
	mock.Mock
}

func (m *CannonRepository) Create(ctx context.Context, rec *cannon.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *CannonRepository) Get(ctx context.Context, id string) (*cannon.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*cannon.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CannonRepository) List(ctx context.Context, opts cannon.ListOptions) ([]cannon.Record, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]cannon.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CannonRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *CannonRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CannonRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *CannonRepository) ReplaceAll(ctx context.Context, recs []cannon.Record) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
