package idea

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateIdea(ctx context.Context, idea *Idea) error {
	args := m.Called(ctx, idea)
	return args.Error(0)
}

func (m *MockStorage) GetIdea(ctx context.Context, id uuid.UUID) (*Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Idea), args.Error(1)
}

func (m *MockStorage) ListIdeasByUser(ctx context.Context, userID uuid.UUID) ([]*Idea, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Idea), args.Error(1)
}

func (m *MockStorage) DeleteIdea(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAnalyzer is a mock implementation of Analyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, sub Submission) (*Analysis, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Analysis), args.Error(1)
}
