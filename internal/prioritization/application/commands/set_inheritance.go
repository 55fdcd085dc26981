package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	sharedApplication "github.com/codesidh/bpts/internal/shared/application"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// SetInheritanceCommand switches a business vertical between inheriting the
// global configuration and carrying its own override.
type SetInheritanceCommand struct {
	Key         string
	VerticalID  uuid.UUID
	Inherit     bool
	RequestedBy string
}

// SetInheritanceResult contains the marker or override version created.
type SetInheritanceResult struct {
	Config *config.PriorityConfiguration
}

// SetInheritanceHandler handles the SetInheritanceCommand.
type SetInheritanceHandler struct {
	configRepo config.Repository
	publisher  eventbus.Publisher
	uow        sharedApplication.UnitOfWork
}

// NewSetInheritanceHandler creates a new SetInheritanceHandler.
func NewSetInheritanceHandler(configRepo config.Repository, publisher eventbus.Publisher, uow sharedApplication.UnitOfWork) *SetInheritanceHandler {
	return &SetInheritanceHandler{
		configRepo: configRepo,
		publisher:  publisher,
		uow:        uow,
	}
}

// Handle executes the SetInheritanceCommand. Switching to inherit appends an
// explicit marker version so resolution falls through to global; switching
// to override copies the currently effective settings into a new
// vertical-scoped version the vertical can then evolve independently.
func (h *SetInheritanceHandler) Handle(ctx context.Context, cmd SetInheritanceCommand) (*SetInheritanceResult, error) {
	key := cmd.Key
	if key == "" {
		key = config.DefaultKey
	}
	modifiedBy := cmd.RequestedBy
	if modifiedBy == "" {
		modifiedBy = "inheritance"
	}
	verticalID := cmd.VerticalID

	var created *config.PriorityConfiguration
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		latest, err := h.configRepo.LatestVersion(txCtx, key, &verticalID)
		if err != nil {
			return err
		}

		if cmd.Inherit {
			created = config.NewPriorityConfiguration(key, &verticalID, modifiedBy)
			created.Version = latest + 1
			created.InheritsGlobal = true
			created.Description = "inherit global configuration"
			return h.configRepo.CreateVersion(txCtx, created)
		}

		// Seed the override from whatever the vertical currently resolves
		// to, so switching modes does not change effective behavior until
		// the vertical is edited.
		base, err := config.ResolveEffective(txCtx, h.configRepo, key, &verticalID, time.Now())
		if err != nil {
			if errors.Is(err, config.ErrConfigurationNotFound) {
				return fmt.Errorf("no global configuration to copy from: %w", err)
			}
			return err
		}

		created = base.NextVersion(latest+1, modifiedBy)
		created.BusinessVerticalID = &verticalID
		created.InheritsGlobal = false
		created.Description = "override global configuration"
		return h.configRepo.CreateVersion(txCtx, created)
	})
	if err != nil {
		return nil, err
	}

	_ = eventbus.PublishDomainEvent(ctx, h.publisher, config.NewVersionCreatedEvent(created))

	return &SetInheritanceResult{Config: created}, nil
}
