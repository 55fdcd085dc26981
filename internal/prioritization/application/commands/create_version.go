// Package commands contains the write-side handlers for priority
// configuration management.
package commands

import (
	"context"
	"fmt"

	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	sharedApplication "github.com/codesidh/bpts/internal/shared/application"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
)

// CreateVersionCommand contains a fully built configuration draft. The
// handler assigns the version number; any version set on the draft is
// ignored.
type CreateVersionCommand struct {
	Draft       *config.PriorityConfiguration
	RequestedBy string
}

// CreateVersionResult contains the committed version.
type CreateVersionResult struct {
	Config     *config.PriorityConfiguration
	Validation services.ValidationResult
}

// CreateVersionHandler handles the CreateVersionCommand.
type CreateVersionHandler struct {
	configRepo config.Repository
	validator  *services.ValidationEngine
	publisher  eventbus.Publisher
	uow        sharedApplication.UnitOfWork
}

// NewCreateVersionHandler creates a new CreateVersionHandler.
func NewCreateVersionHandler(configRepo config.Repository, publisher eventbus.Publisher, uow sharedApplication.UnitOfWork) *CreateVersionHandler {
	return &CreateVersionHandler{
		configRepo: configRepo,
		validator:  services.NewValidationEngine(),
		publisher:  publisher,
		uow:        uow,
	}
}

// Handle validates the draft and appends it as the next version for its
// (key, vertical) pair. An invalid draft is rejected before anything is
// written.
func (h *CreateVersionHandler) Handle(ctx context.Context, cmd CreateVersionCommand) (*CreateVersionResult, error) {
	draft := cmd.Draft
	if draft == nil {
		return nil, fmt.Errorf("%w: no draft provided", config.ErrConfigurationInvalid)
	}
	if draft.Key == "" {
		draft.Key = config.DefaultKey
	}
	if cmd.RequestedBy != "" {
		draft.ModifiedBy = cmd.RequestedBy
		if draft.CreatedBy == "" {
			draft.CreatedBy = cmd.RequestedBy
		}
	}

	result := h.validator.Validate(draft)
	if !result.Valid {
		return &CreateVersionResult{Validation: result},
			fmt.Errorf("%w: %v", config.ErrConfigurationInvalid, result.Errors)
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		latest, err := h.configRepo.LatestVersion(txCtx, draft.Key, draft.BusinessVerticalID)
		if err != nil {
			return err
		}
		draft.Version = latest + 1
		return h.configRepo.CreateVersion(txCtx, draft)
	})
	if err != nil {
		return nil, err
	}

	// Persisted state is authoritative; event delivery is best effort.
	_ = eventbus.PublishDomainEvent(ctx, h.publisher, config.NewVersionCreatedEvent(draft))

	return &CreateVersionResult{Config: draft, Validation: result}, nil
}
