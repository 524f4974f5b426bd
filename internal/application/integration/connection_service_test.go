package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

type memConnectionRepo struct {
	conns map[uuid.UUID]integration.PlatformConnection
}

func newMemConnectionRepo() *memConnectionRepo {
	return &memConnectionRepo{conns: make(map[uuid.UUID]integration.PlatformConnection)}
}

func (r *memConnectionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	conn, ok := r.conns[id]
	if !ok || conn.TenantID != tenantID {
		return nil, integration.ErrConnectionNotFound
	}
	c := conn
	return &c, nil
}

func (r *memConnectionRepo) FindByTenantAndPlatform(_ context.Context, tenantID uuid.UUID, platform integration.Platform) (*integration.PlatformConnection, error) {
	for _, conn := range r.conns {
		if conn.TenantID == tenantID && conn.Platform == platform {
			c := conn
			return &c, nil
		}
	}
	return nil, integration.ErrConnectionNotFound
}

func (r *memConnectionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]integration.PlatformConnection, error) {
	var out []integration.PlatformConnection
	for _, conn := range r.conns {
		if conn.TenantID == tenantID {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) FindAllEnabled(_ context.Context) ([]integration.PlatformConnection, error) {
	var out []integration.PlatformConnection
	for _, conn := range r.conns {
		if conn.IsEnabled {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) Save(_ context.Context, conn *integration.PlatformConnection) error {
	r.conns[conn.ID] = *conn
	return nil
}

func (r *memConnectionRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	conn, ok := r.conns[id]
	if !ok || conn.TenantID != tenantID {
		return integration.ErrConnectionNotFound
	}
	delete(r.conns, id)
	return nil
}

var _ integration.ConnectionRepository = (*memConnectionRepo)(nil)

func TestConnectionService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := newMemConnectionRepo()
	svc := NewConnectionService(repo, zap.NewNop())

	t.Run("creates a connection with defaults", func(t *testing.T) {
		conn, err := svc.Create(ctx, tenantID, CreateConnectionInput{
			Platform:  "TRENDYOL",
			Name:      "Trendyol mağazam",
			SellerID:  "123456",
			APIKey:    "key",
			APISecret: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, integration.PlatformTrendyol, conn.Platform)
		assert.True(t, conn.IsEnabled)
		assert.Equal(t, 15, conn.SyncIntervalMinutes)
		assert.Equal(t, "123456", conn.SellerID)
	})

	t.Run("rejects a second connection for the same platform", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, CreateConnectionInput{
			Platform: "TRENDYOL",
			Name:     "ikinci mağaza",
			APIKey:   "key",
		})
		assert.ErrorIs(t, err, integration.ErrConnectionAlreadyExists)
	})

	t.Run("rejects unknown platforms", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, CreateConnectionInput{
			Platform: "GITTIGIDIYOR",
			Name:     "kapalı pazar",
			APIKey:   "key",
		})
		assert.ErrorIs(t, err, integration.ErrMapperUnknownPlatform)
	})
}

func TestConnectionService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := newMemConnectionRepo()
	svc := NewConnectionService(repo, zap.NewNop())

	conn, err := svc.Create(ctx, tenantID, CreateConnectionInput{
		Platform: "N11", Name: "N11 mağaza", APIKey: "key", APISecret: "secret",
	})
	require.NoError(t, err)

	t.Run("applies partial changes", func(t *testing.T) {
		interval := 30
		consolidate := true
		updated, err := svc.Update(ctx, tenantID, conn.ID, UpdateConnectionInput{
			SyncIntervalMinutes:  &interval,
			ConsolidationEnabled: &consolidate,
		})
		require.NoError(t, err)
		assert.Equal(t, 30, updated.SyncIntervalMinutes)
		assert.True(t, updated.ConsolidationEnabled)
		assert.Equal(t, "N11 mağaza", updated.Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		empty := ""
		_, err := svc.Update(ctx, tenantID, conn.ID, UpdateConnectionInput{Name: &empty})
		assert.ErrorIs(t, err, integration.ErrConnectionInvalidName)
	})

	t.Run("rejects zero sync interval", func(t *testing.T) {
		zero := 0
		_, err := svc.Update(ctx, tenantID, conn.ID, UpdateConnectionInput{SyncIntervalMinutes: &zero})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestConnectionService_EnableDisableDelete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := newMemConnectionRepo()
	svc := NewConnectionService(repo, zap.NewNop())

	conn, err := svc.Create(ctx, tenantID, CreateConnectionInput{
		Platform: "HEPSIBURADA", Name: "HB mağaza", APIKey: "key",
	})
	require.NoError(t, err)

	disabled, err := svc.Disable(ctx, tenantID, conn.ID)
	require.NoError(t, err)
	assert.False(t, disabled.IsEnabled)

	enabled, err := svc.Enable(ctx, tenantID, conn.ID)
	require.NoError(t, err)
	assert.True(t, enabled.IsEnabled)

	require.NoError(t, svc.Delete(ctx, tenantID, conn.ID))
	_, err = svc.Get(ctx, tenantID, conn.ID)
	assert.ErrorIs(t, err, integration.ErrConnectionNotFound)

	// deleting again reports not found
	err = svc.Delete(ctx, tenantID, conn.ID)
	assert.ErrorIs(t, err, integration.ErrConnectionNotFound)
}

func TestConnectionService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newMemConnectionRepo()
	svc := NewConnectionService(repo, zap.NewNop())

	owner := uuid.New()
	conn, err := svc.Create(ctx, owner, CreateConnectionInput{
		Platform: "AMAZON", Name: "Amazon TR", APIKey: "key",
	})
	require.NoError(t, err)

	intruder := uuid.New()
	_, err = svc.Get(ctx, intruder, conn.ID)
	assert.ErrorIs(t, err, integration.ErrConnectionNotFound)

	err = svc.Delete(ctx, intruder, conn.ID)
	assert.ErrorIs(t, err, integration.ErrConnectionNotFound)
}
