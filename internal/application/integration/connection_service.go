package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// CreateConnectionInput carries the fields needed to connect a marketplace
// account to a tenant.
type CreateConnectionInput struct {
	Platform             string
	Name                 string
	SellerID             string
	APIKey               string
	APISecret            string
	SyncIntervalMinutes  int
	ConsolidationEnabled bool
}

// UpdateConnectionInput carries the mutable connection fields. Nil pointers
// leave the current value untouched.
type UpdateConnectionInput struct {
	Name                 *string
	SellerID             *string
	APIKey               *string
	APISecret            *string
	SyncIntervalMinutes  *int
	ConsolidationEnabled *bool
}

// ConnectionService manages a tenant's marketplace connections.
type ConnectionService struct {
	connections integration.ConnectionRepository
	logger      *zap.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(connections integration.ConnectionRepository, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{connections: connections, logger: logger}
}

// Create connects a marketplace account. A tenant has at most one connection
// per platform.
func (s *ConnectionService) Create(ctx context.Context, tenantID uuid.UUID, input CreateConnectionInput) (*integration.PlatformConnection, error) {
	platform := integration.Platform(input.Platform)
	if !platform.IsValid() {
		return nil, fmt.Errorf("%w: %s", integration.ErrMapperUnknownPlatform, input.Platform)
	}

	existing, err := s.connections.FindByTenantAndPlatform(ctx, tenantID, platform)
	if err != nil && !errors.Is(err, integration.ErrConnectionNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", integration.ErrConnectionAlreadyExists, platform.DisplayName())
	}

	conn, err := integration.NewPlatformConnection(tenantID, platform, input.Name, input.APIKey, input.APISecret)
	if err != nil {
		return nil, err
	}
	conn.SellerID = input.SellerID
	conn.ConsolidationEnabled = input.ConsolidationEnabled
	if input.SyncIntervalMinutes > 0 {
		conn.SyncIntervalMinutes = input.SyncIntervalMinutes
	}

	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("Platform connection created",
		zap.String("connection_id", conn.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("platform", platform.String()),
	)
	return conn, nil
}

// Get returns one connection of the tenant
func (s *ConnectionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	return s.connections.FindByID(ctx, tenantID, id)
}

// List returns all connections of the tenant
func (s *ConnectionService) List(ctx context.Context, tenantID uuid.UUID) ([]integration.PlatformConnection, error) {
	return s.connections.FindAllForTenant(ctx, tenantID)
}

// Update applies partial changes to a connection
func (s *ConnectionService) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateConnectionInput) (*integration.PlatformConnection, error) {
	conn, err := s.connections.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, integration.ErrConnectionInvalidName
		}
		conn.Name = *input.Name
	}
	if input.SellerID != nil {
		conn.SellerID = *input.SellerID
	}
	if input.APIKey != nil {
		if *input.APIKey == "" {
			return nil, integration.ErrConnectionMissingAPIKey
		}
		conn.APIKey = *input.APIKey
	}
	if input.APISecret != nil {
		conn.APISecret = *input.APISecret
	}
	if input.SyncIntervalMinutes != nil {
		if *input.SyncIntervalMinutes < 1 {
			return nil, fmt.Errorf("%w: sync interval must be at least one minute", shared.ErrInvalidInput)
		}
		conn.SyncIntervalMinutes = *input.SyncIntervalMinutes
	}
	if input.ConsolidationEnabled != nil {
		conn.ConsolidationEnabled = *input.ConsolidationEnabled
	}

	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Enable turns scheduled syncing back on for a connection
func (s *ConnectionService) Enable(ctx context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	return s.setEnabled(ctx, tenantID, id, true)
}

// Disable pauses scheduled syncing for a connection
func (s *ConnectionService) Disable(ctx context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	return s.setEnabled(ctx, tenantID, id, false)
}

func (s *ConnectionService) setEnabled(ctx context.Context, tenantID, id uuid.UUID, enabled bool) (*integration.PlatformConnection, error) {
	conn, err := s.connections.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if enabled {
		conn.Enable()
	} else {
		conn.Disable()
	}
	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("Platform connection toggled",
		zap.String("connection_id", conn.ID.String()),
		zap.Bool("enabled", enabled),
	)
	return conn, nil
}

// Delete removes a connection. Orders already pulled through it are kept.
func (s *ConnectionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.connections.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.connections.Delete(ctx, tenantID, id)
}
