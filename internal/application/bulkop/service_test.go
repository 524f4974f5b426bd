package bulkop

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
)

type stubOperationRepo struct {
	mu  sync.Mutex
	ops map[uuid.UUID]bulk.BulkOperation
}

func newStubOperationRepo(ops ...*bulk.BulkOperation) *stubOperationRepo {
	repo := &stubOperationRepo{ops: make(map[uuid.UUID]bulk.BulkOperation)}
	for _, op := range ops {
		repo.ops[op.ID] = *op
	}
	return repo
}

func (r *stubOperationRepo) Save(_ context.Context, op *bulk.BulkOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = *op
	return nil
}

func (r *stubOperationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok || op.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	found := op
	return &found, nil
}

func (r *stubOperationRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ops []bulk.BulkOperation
	for _, op := range r.ops {
		if op.TenantID != tenantID {
			continue
		}
		if filter.Type != nil && op.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && op.Status != *filter.Status {
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (r *stubOperationRepo) Count(ctx context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) (int64, error) {
	ops, err := r.FindAll(ctx, tenantID, filter)
	return int64(len(ops)), err
}

func (r *stubOperationRepo) FindUnfinished(_ context.Context, tenantID uuid.UUID) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ops []bulk.BulkOperation
	for _, op := range r.ops {
		if op.TenantID == tenantID && !op.Status.IsTerminal() {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (r *stubOperationRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.ops, id)
	return nil
}

var _ bulk.OperationRepository = (*stubOperationRepo)(nil)

type stubPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *stubPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

var _ shared.EventPublisher = (*stubPublisher)(nil)

func processingOperation(t *testing.T, tenantID uuid.UUID, processed int) *bulk.BulkOperation {
	t.Helper()
	op, err := bulk.NewBulkOperation(tenantID, bulk.OperationOrderSync, 10)
	require.NoError(t, err)
	require.NoError(t, op.Start())
	for i := 0; i < processed; i++ {
		op.RecordItemResult(true, "", "")
	}
	return op
}

func TestService_Progress(t *testing.T) {
	tenantID := uuid.New()

	t.Run("serves the cached snapshot", func(t *testing.T) {
		op := processingOperation(t, tenantID, 3)
		progress := cache.NewInMemoryProgressCache()
		require.NoError(t, progress.Put(context.Background(), cache.SnapshotFromOperation(op)))

		// store deliberately stale: the cache must win
		service := NewService(newStubOperationRepo(), progress, nil, zap.NewNop())

		snapshot, err := service.Progress(context.Background(), tenantID, op.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, snapshot.ProcessedItems)
		assert.Equal(t, 30, snapshot.Progress)
	})

	t.Run("falls back to the store", func(t *testing.T) {
		op := processingOperation(t, tenantID, 5)
		service := NewService(newStubOperationRepo(op), cache.NewInMemoryProgressCache(), nil, zap.NewNop())

		snapshot, err := service.Progress(context.Background(), tenantID, op.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, snapshot.ProcessedItems)
		assert.Equal(t, 50, snapshot.Progress)
	})

	t.Run("unknown operation", func(t *testing.T) {
		service := NewService(newStubOperationRepo(), cache.NewInMemoryProgressCache(), nil, zap.NewNop())
		_, err := service.Progress(context.Background(), tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	tenantID := uuid.New()

	t.Run("cancels a running operation", func(t *testing.T) {
		op := processingOperation(t, tenantID, 2)
		repo := newStubOperationRepo(op)
		progress := cache.NewInMemoryProgressCache()
		require.NoError(t, progress.Put(context.Background(), cache.SnapshotFromOperation(op)))
		publisher := &stubPublisher{}
		service := NewService(repo, progress, publisher, zap.NewNop())

		cancelled, err := service.Cancel(context.Background(), tenantID, op.ID)
		require.NoError(t, err)
		assert.Equal(t, bulk.OperationStatusCancelled, cancelled.Status)

		stored, err := repo.FindByID(context.Background(), tenantID, op.ID)
		require.NoError(t, err)
		assert.Equal(t, bulk.OperationStatusCancelled, stored.Status)

		_, err = progress.Get(context.Background(), op.ID)
		assert.ErrorIs(t, err, cache.ErrProgressNotCached)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, bulk.EventOperationFinished, publisher.events[0].EventType())
	})

	t.Run("cannot cancel a terminal operation", func(t *testing.T) {
		op := processingOperation(t, tenantID, 10)
		require.NoError(t, op.Finish())
		service := NewService(newStubOperationRepo(op), cache.NewInMemoryProgressCache(), nil, zap.NewNop())

		_, err := service.Cancel(context.Background(), tenantID, op.ID)
		assert.Error(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("deletes a terminal operation", func(t *testing.T) {
		op := processingOperation(t, tenantID, 10)
		require.NoError(t, op.Finish())
		repo := newStubOperationRepo(op)
		service := NewService(repo, cache.NewInMemoryProgressCache(), nil, zap.NewNop())

		require.NoError(t, service.Delete(context.Background(), tenantID, op.ID))
		_, err := repo.FindByID(context.Background(), tenantID, op.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("refuses to delete a running operation", func(t *testing.T) {
		op := processingOperation(t, tenantID, 2)
		service := NewService(newStubOperationRepo(op), cache.NewInMemoryProgressCache(), nil, zap.NewNop())

		err := service.Delete(context.Background(), tenantID, op.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestService_List(t *testing.T) {
	tenantID := uuid.New()

	opSync := processingOperation(t, tenantID, 1)
	opImport, err := bulk.NewBulkOperation(tenantID, bulk.OperationPriceUpdate, 4)
	require.NoError(t, err)

	service := NewService(newStubOperationRepo(opSync, opImport), cache.NewInMemoryProgressCache(), nil, zap.NewNop())

	t.Run("lists all operations", func(t *testing.T) {
		page, err := service.List(context.Background(), tenantID, bulk.OperationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
	})

	t.Run("filters by type", func(t *testing.T) {
		opType := bulk.OperationPriceUpdate
		page, err := service.List(context.Background(), tenantID, bulk.OperationFilter{Type: &opType})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, bulk.OperationPriceUpdate, page.Items[0].Type)
	})
}

func TestService_Unfinished(t *testing.T) {
	tenantID := uuid.New()

	running := processingOperation(t, tenantID, 4)
	done := processingOperation(t, tenantID, 10)
	require.NoError(t, done.Finish())

	service := NewService(newStubOperationRepo(running, done), cache.NewInMemoryProgressCache(), nil, zap.NewNop())

	ops, err := service.Unfinished(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, running.ID, ops[0].ID)
	assert.Equal(t, 4, ops[0].ResumeOffset())
}
