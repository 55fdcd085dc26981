package commands

import (
	"context"
	"fmt"

	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	sharedApplication "github.com/codesidh/bpts/internal/shared/application"
	"github.com/codesidh/bpts/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// RollbackConfigurationCommand restores an earlier version's settings.
type RollbackConfigurationCommand struct {
	Key           string
	VerticalID    *uuid.UUID
	TargetVersion int
	RequestedBy   string
}

// RollbackConfigurationResult contains the restored configuration.
type RollbackConfigurationResult struct {
	Config       *config.PriorityConfiguration
	RolledBackTo int
}

// RollbackConfigurationHandler handles the RollbackConfigurationCommand.
//
// History stays intact: rolling back copies the target version's settings
// into a brand new version rather than deleting anything.
type RollbackConfigurationHandler struct {
	configRepo config.Repository
	publisher  eventbus.Publisher
	uow        sharedApplication.UnitOfWork
}

// NewRollbackConfigurationHandler creates a new RollbackConfigurationHandler.
func NewRollbackConfigurationHandler(configRepo config.Repository, publisher eventbus.Publisher, uow sharedApplication.UnitOfWork) *RollbackConfigurationHandler {
	return &RollbackConfigurationHandler{
		configRepo: configRepo,
		publisher:  publisher,
		uow:        uow,
	}
}

// Handle executes the RollbackConfigurationCommand.
func (h *RollbackConfigurationHandler) Handle(ctx context.Context, cmd RollbackConfigurationCommand) (*RollbackConfigurationResult, error) {
	key := cmd.Key
	if key == "" {
		key = config.DefaultKey
	}

	var restored *config.PriorityConfiguration
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		target, err := h.configRepo.GetVersion(txCtx, key, cmd.VerticalID, cmd.TargetVersion)
		if err != nil {
			return err
		}

		latest, err := h.configRepo.LatestVersion(txCtx, key, cmd.VerticalID)
		if err != nil {
			return err
		}

		modifiedBy := cmd.RequestedBy
		if modifiedBy == "" {
			modifiedBy = "rollback"
		}
		restored = target.NextVersion(latest+1, modifiedBy)
		restored.Description = fmt.Sprintf("rollback to v%d", cmd.TargetVersion)
		return h.configRepo.CreateVersion(txCtx, restored)
	})
	if err != nil {
		return nil, err
	}

	_ = eventbus.PublishDomainEvent(ctx, h.publisher, config.NewVersionCreatedEvent(restored))

	return &RollbackConfigurationResult{Config: restored, RolledBackTo: cmd.TargetVersion}, nil
}
