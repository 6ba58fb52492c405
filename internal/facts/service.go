package facts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

// Service owns fact lifecycle: ingestion of raw client text, value
// correction, and deletion guarded by category protection.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs the fact lifecycle service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("fact store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Ingest parses raw client text with the category's encoding and upserts the
// resulting facts, returning their IDs in parse order. Unparseable
// structured input yields an empty result, not an error.
func (s *Service) Ingest(ctx context.Context, categoryID id.CategoryID, raw string) ([]id.FactID, error) {
	category, err := s.store.CategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load category")
	}

	inputs := ParseRaw(category.Kind, raw)
	if len(inputs) == 0 && s.logger != nil {
		s.logger.Debug("fact submission produced no facts",
			"category", category.Name, "kind", string(category.Kind))
	}

	factIDs := make([]id.FactID, 0, len(inputs))
	for _, input := range inputs {
		fact, err := s.store.FindOrCreateFact(ctx, &Fact{
			CategoryID:  category.ID,
			Value:       input.Value,
			Description: input.Description,
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "upsert fact")
		}
		factIDs = append(factIDs, fact.ID)
	}
	return factIDs, nil
}

// Correct is the only permitted mutation of an existing fact: fixing its
// value or description. The universal fact is never correctable.
func (s *Service) Correct(ctx context.Context, factID id.FactID, value, description string) error {
	if factID == id.UniversalFactID {
		return dErrors.New(dErrors.CodeForbidden, "the universal fact cannot be modified")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, "fact value must not be empty")
	}
	if err := s.store.UpdateFact(ctx, factID, value, description); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "update fact")
	}
	return nil
}

// Delete removes a fact unless its category is protected. Basic facts are
// system-owned; SET facts must only be removed through fact-set deletion.
func (s *Service) Delete(ctx context.Context, factID id.FactID) error {
	fact, err := s.store.FactByID(ctx, factID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load fact")
	}

	category, err := s.store.CategoryByID(ctx, fact.CategoryID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load category")
	}
	if category.Protected() {
		return dErrors.New(dErrors.CodeForbidden,
			"facts in category "+category.Name+" cannot be deleted")
	}

	if err := s.store.DeleteFact(ctx, factID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete fact")
	}
	return nil
}
