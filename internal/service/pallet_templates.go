package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/repository"
)

var (
	// ErrRepositoryNotConfigured is returned when the repository is not configured.
	ErrRepositoryNotConfigured = errors.New("repository not configured")
	// ErrInvalidTemplate is returned for templates without id or with a non-positive size.
	ErrInvalidTemplate = errors.New("invalid pallet template")
)

// PalletTemplateService provides pallet template operations.
type PalletTemplateService interface {
	List(ctx context.Context) ([]model.Pallet, error)
	Templates(ctx context.Context) []model.Pallet
	Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error)
	Delete(ctx context.Context, templateID string) error
	Seed(ctx context.Context) error
}

// PalletTemplateServiceImpl implements PalletTemplateService.
type PalletTemplateServiceImpl struct {
	repo     repository.PalletTemplateRepositoryInterface
	defaults []model.Pallet
}

// NewPalletTemplateService creates a new pallet template service.
// Without a repository only the default templates are available.
func NewPalletTemplateService(repo repository.PalletTemplateRepositoryInterface) PalletTemplateService {
	return &PalletTemplateServiceImpl{
		repo:     repo,
		defaults: model.DefaultPalletTemplates(),
	}
}

// List returns the stored templates.
func (s *PalletTemplateServiceImpl) List(ctx context.Context) ([]model.Pallet, error) {
	if s.repo == nil {
		return s.defaultTemplates(), nil
	}
	return s.repo.List(ctx)
}

// Templates returns the templates a planning session should offer. Any
// repository failure or an empty catalogue falls back to the defaults.
func (s *PalletTemplateServiceImpl) Templates(ctx context.Context) []model.Pallet {
	templates, err := s.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load pallet templates, using defaults")
		return s.defaultTemplates()
	}
	if len(templates) == 0 {
		return s.defaultTemplates()
	}
	return templates
}

// Upsert validates and stores a template.
func (s *PalletTemplateServiceImpl) Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error) {
	if s.repo == nil {
		return model.Pallet{}, ErrRepositoryNotConfigured
	}
	if err := validateTemplate(template); err != nil {
		return model.Pallet{}, err
	}
	return s.repo.Upsert(ctx, template)
}

// Delete removes a template.
func (s *PalletTemplateServiceImpl) Delete(ctx context.Context, templateID string) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	return s.repo.Delete(ctx, templateID)
}

// Seed stores the default templates that are missing.
func (s *PalletTemplateServiceImpl) Seed(ctx context.Context) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	return s.repo.SeedDefaults(ctx, s.defaultTemplates())
}

func (s *PalletTemplateServiceImpl) defaultTemplates() []model.Pallet {
	out := make([]model.Pallet, len(s.defaults))
	copy(out, s.defaults)
	return out
}

func validateTemplate(t model.Pallet) error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	}
	d := t.Dimension.Safe()
	if d.Width <= 0 || d.Height <= 0 || d.Depth <= 0 {
		return fmt.Errorf("%w: %s must have a positive width, height and depth", ErrInvalidTemplate, t.ID)
	}
	if model.SafeNumber(t.Weight) < 0 {
		return fmt.Errorf("%w: %s has a negative weight", ErrInvalidTemplate, t.ID)
	}
	if model.SafeNumber(t.MaxLoad) < 0 {
		return fmt.Errorf("%w: %s has a negative max load", ErrInvalidTemplate, t.ID)
	}
	return nil
}
