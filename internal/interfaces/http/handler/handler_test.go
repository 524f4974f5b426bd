package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/bulkop"
	integrationapp "github.com/sellerhub/backend/internal/application/integration"
	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	"github.com/sellerhub/backend/internal/interfaces/http/middleware"
	"github.com/sellerhub/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- in-memory fakes ----

type memConnectionRepo struct {
	mu    sync.Mutex
	conns map[uuid.UUID]integration.PlatformConnection
}

func newMemConnectionRepo() *memConnectionRepo {
	return &memConnectionRepo{conns: make(map[uuid.UUID]integration.PlatformConnection)}
}

func (r *memConnectionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok || conn.TenantID != tenantID {
		return nil, integration.ErrConnectionNotFound
	}
	c := conn
	return &c, nil
}

func (r *memConnectionRepo) FindByTenantAndPlatform(_ context.Context, tenantID uuid.UUID, platform integration.Platform) (*integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		if conn.TenantID == tenantID && conn.Platform == platform {
			c := conn
			return &c, nil
		}
	}
	return nil, integration.ErrConnectionNotFound
}

func (r *memConnectionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.PlatformConnection
	for _, conn := range r.conns {
		if conn.TenantID == tenantID {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) FindAllEnabled(_ context.Context) ([]integration.PlatformConnection, error) {
	return nil, nil
}

func (r *memConnectionRepo) Save(_ context.Context, conn *integration.PlatformConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = *conn
	return nil
}

func (r *memConnectionRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok || conn.TenantID != tenantID {
		return integration.ErrConnectionNotFound
	}
	delete(r.conns, id)
	return nil
}

type memOperationRepo struct {
	mu  sync.Mutex
	ops map[uuid.UUID]bulk.BulkOperation
}

func newMemOperationRepo() *memOperationRepo {
	return &memOperationRepo{ops: make(map[uuid.UUID]bulk.BulkOperation)}
}

func (r *memOperationRepo) Save(_ context.Context, op *bulk.BulkOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = *op
	return nil
}

func (r *memOperationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok || op.TenantID != tenantID {
		return nil, fmt.Errorf("operation %s: %w", id, shared.ErrNotFound)
	}
	c := op
	return &c, nil
}

func (r *memOperationRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bulk.BulkOperation
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
		out = append(out, op)
	}
	return out, nil
}

func (r *memOperationRepo) Count(_ context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) (int64, error) {
	ops, _ := r.FindAll(context.Background(), tenantID, filter)
	return int64(len(ops)), nil
}

func (r *memOperationRepo) FindUnfinished(_ context.Context, tenantID uuid.UUID) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bulk.BulkOperation
	for _, op := range r.ops {
		if op.TenantID == tenantID && !op.Status.IsTerminal() {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *memOperationRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok || op.TenantID != tenantID {
		return fmt.Errorf("operation %s: %w", id, shared.ErrNotFound)
	}
	delete(r.ops, id)
	return nil
}

var _ bulk.OperationRepository = (*memOperationRepo)(nil)
var _ integration.ConnectionRepository = (*memConnectionRepo)(nil)

// ---- test server ----

type testServer struct {
	engine      *gin.Engine
	tenantID    uuid.UUID
	connections *memConnectionRepo
	operations  *memOperationRepo
	progress    *cache.InMemoryProgressCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	connRepo := newMemConnectionRepo()
	opRepo := newMemOperationRepo()
	progress := cache.NewInMemoryProgressCache()

	connSvc := integrationapp.NewConnectionService(connRepo, zap.NewNop())
	opSvc := bulkop.NewService(opRepo, progress, nil, zap.NewNop())

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Tenant(middleware.DefaultTenantConfig()))

	r := router.NewRouter(engine)
	r.Register(NewConnectionHandler(connSvc))
	r.Register(NewOperationHandler(opSvc, nil))
	r.Register(NewSystemHandler("test"))
	r.Setup()

	return &testServer{
		engine:      engine,
		tenantID:    uuid.New(),
		connections: connRepo,
		operations:  opRepo,
		progress:    progress,
	}
}

func (s *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, s.tenantID.String())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected a success envelope, got: %s", w.Body.String())
	return envelope.Data
}

// ---- connection endpoints ----

func TestConnectionEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("create returns 201 and masks credentials", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/api/v1/connections", gin.H{
			"platform":   "TRENDYOL",
			"name":       "Trendyol mağazam",
			"seller_id":  "123456",
			"api_key":    "key",
			"api_secret": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeData(t, w)
		assert.Equal(t, "TRENDYOL", data["platform"])
		assert.Equal(t, "Trendyol", data["platform_name"])
		assert.NotContains(t, w.Body.String(), "api_key")
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("duplicate platform returns 409", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/api/v1/connections", gin.H{
			"platform": "TRENDYOL",
			"name":     "ikinci mağaza",
			"api_key":  "key",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_ALREADY_EXISTS")
	})

	t.Run("validation failure returns 400", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/api/v1/connections", gin.H{
			"platform": "EBAY",
			"name":     "mağaza",
			"api_key":  "key",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list returns the tenant's connections", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/connections", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var envelope struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data, 1)
	})

	t.Run("unknown connection returns 404", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/connections/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("disable then enable", func(t *testing.T) {
		conns, err := s.connections.FindAllForTenant(context.Background(), s.tenantID)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		id := conns[0].ID.String()

		w := s.request(t, http.MethodPost, "/api/v1/connections/"+id+"/disable", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeData(t, w)["is_enabled"])

		w = s.request(t, http.MethodPost, "/api/v1/connections/"+id+"/enable", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeData(t, w)["is_enabled"])
	})

	t.Run("missing tenant header returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/connections", nil)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// ---- operation endpoints ----

func seedOperation(t *testing.T, s *testServer, processed int) *bulk.BulkOperation {
	t.Helper()
	op, err := bulk.NewBulkOperation(s.tenantID, bulk.OperationOrderSync, 10)
	require.NoError(t, err)
	require.NoError(t, op.Start())
	for i := 0; i < processed; i++ {
		op.RecordItemResult(true, fmt.Sprintf("ORD-%d", i+1), "")
	}
	require.NoError(t, s.operations.Save(context.Background(), op))
	return op
}

func TestOperationEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("get returns the operation", func(t *testing.T) {
		op := seedOperation(t, s, 3)
		w := s.request(t, http.MethodGet, "/api/v1/operations/"+op.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, "processing", data["status"])
		assert.Equal(t, float64(3), data["processed_items"])
	})

	t.Run("progress falls back to the stored record", func(t *testing.T) {
		op := seedOperation(t, s, 5)
		w := s.request(t, http.MethodGet, "/api/v1/operations/"+op.ID.String()+"/progress", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, float64(50), data["progress"])
	})

	t.Run("cancel flips a running operation", func(t *testing.T) {
		op := seedOperation(t, s, 2)
		w := s.request(t, http.MethodPost, "/api/v1/operations/"+op.ID.String()+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cancelled", decodeData(t, w)["status"])
	})

	t.Run("delete rejects a running operation", func(t *testing.T) {
		op := seedOperation(t, s, 1)
		w := s.request(t, http.MethodDelete, "/api/v1/operations/"+op.ID.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INVALID_STATE")
	})

	t.Run("delete removes a finished operation", func(t *testing.T) {
		op := seedOperation(t, s, 10)
		require.NoError(t, op.Finish())
		require.NoError(t, s.operations.Save(context.Background(), op))

		w := s.request(t, http.MethodDelete, "/api/v1/operations/"+op.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("list filters by status", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/operations?status=cancelled", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var envelope struct {
			Data []map[string]any `json:"data"`
			Meta map[string]any   `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, float64(1), envelope.Meta["total"])
	})

	t.Run("invalid status returns 400", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/operations?status=exploded", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
