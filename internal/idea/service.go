// Package idea stores startup ideas and their analysis results, scoped to
// the owning user. Ownership always comes from the verified session subject,
// never from client input.
package idea

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"venturevet/internal/validate"
)

// Storage defines the persistence operations for ideas.
type Storage interface {
	CreateIdea(ctx context.Context, idea *Idea) error
	GetIdea(ctx context.Context, id uuid.UUID) (*Idea, error)
	ListIdeasByUser(ctx context.Context, userID uuid.UUID) ([]*Idea, error)
	DeleteIdea(ctx context.Context, id uuid.UUID) error
}

// Service coordinates analysis and persistence of startup ideas.
type Service struct {
	storage  Storage
	analyzer Analyzer
	logger   *slog.Logger
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates an idea service.
func NewService(storage Storage, analyzer Analyzer, opts ...ServiceOption) *Service {
	s := &Service{
		storage:  storage,
		analyzer: analyzer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit analyzes the submission and stores the resulting idea under the
// given user.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, sub Submission) (*Idea, error) {
	if err := validate.Apply(
		validate.Required("title", sub.Title),
		validate.Required("problem", sub.Problem),
		validate.Required("solution", sub.Solution),
		validate.Required("audience", sub.Audience),
		validate.Required("businessModel", sub.BusinessModel),
	); err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, sub)
	if err != nil {
		return nil, err
	}

	idea := &Idea{
		ID:         uuid.New(),
		UserID:     userID,
		Submission: sub,
		Analysis:   *analysis,
		CreatedAt:  time.Now(),
	}
	if err := s.storage.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to save idea: %w", err)
	}
	return idea, nil
}

// List returns the user's ideas, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Idea, error) {
	return s.storage.ListIdeasByUser(ctx, userID)
}

// Get returns one idea, enforcing that it belongs to the given user. A
// foreign idea is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Idea, error) {
	idea, err := s.storage.GetIdea(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		return nil, ErrNotFound
	}
	return idea, nil
}

// Delete removes one of the user's ideas.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.storage.DeleteIdea(ctx, id)
}
