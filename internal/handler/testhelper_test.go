package handler_test

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/handler"
	"github.com/dmitrymomot/uploadhub/internal/service"
	"github.com/dmitrymomot/uploadhub/internal/store"
	"github.com/dmitrymomot/uploadhub/pkg/health"
	"github.com/dmitrymomot/uploadhub/pkg/logger"
	"github.com/dmitrymomot/uploadhub/pkg/storage"
)

// memStore is an in-memory stand-in for the Postgres store, covering
// every repository surface the handlers reach.
type memStore struct {
	users      map[string]*store.User
	sessions   map[string]*store.Session
	apps       map[string]*store.App
	keys       map[int64]*store.APIKey
	configs    map[int64]*store.StorageConfig
	files      map[string]*store.File
	nextKeyID  int64
	nextCfgID  int64
	fileOrder  []string
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*store.User),
		sessions: make(map[string]*store.Session),
		apps:     make(map[string]*store.App),
		keys:     make(map[int64]*store.APIKey),
		configs:  make(map[int64]*store.StorageConfig),
		files:    make(map[string]*store.File),
	}
}

func (m *memStore) FindUser(_ context.Context, id string) (*store.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *memStore) FindSession(_ context.Context, token string) (*store.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (m *memStore) FindApp(_ context.Context, id string) (*store.App, error) {
	app, ok := m.apps[id]
	if !ok || app.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return app, nil
}

func (m *memStore) FindAppForUser(_ context.Context, id, userID string) (*store.App, error) {
	app, ok := m.apps[id]
	if !ok || app.UserID != userID || app.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return app, nil
}

func (m *memStore) CreateApp(_ context.Context, app store.App) (*store.App, error) {
	app.CreatedAt = time.Now()
	m.apps[app.ID] = &app
	return &app, nil
}

func (m *memStore) ListAppsByUser(_ context.Context, userID string) ([]store.App, error) {
	var out []store.App
	for _, app := range m.apps {
		if app.UserID == userID && app.DeletedAt == nil {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (m *memStore) SetAppStorage(_ context.Context, appID string, storageID *int64) (*store.App, error) {
	app, ok := m.apps[appID]
	if !ok {
		return nil, store.ErrNotFound
	}
	app.StorageID = storageID
	return app, nil
}

func (m *memStore) SoftDeleteApp(_ context.Context, id string) error {
	app, ok := m.apps[id]
	if !ok || app.DeletedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now()
	app.DeletedAt = &now
	return nil
}

func (m *memStore) FindAPIKeyBySecret(_ context.Context, secret string) (*store.APIKey, error) {
	for _, key := range m.keys {
		if key.Secret == secret && key.DeletedAt == nil {
			return key, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) FindAPIKeyByClientID(_ context.Context, clientID string) (*store.APIKey, error) {
	for _, key := range m.keys {
		if key.ClientID == clientID && key.DeletedAt == nil {
			return key, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) FindAPIKey(_ context.Context, id int64) (*store.APIKey, error) {
	key, ok := m.keys[id]
	if !ok || key.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return key, nil
}

func (m *memStore) CreateAPIKey(_ context.Context, key store.APIKey) (*store.APIKey, error) {
	m.nextKeyID++
	key.ID = m.nextKeyID
	key.CreatedAt = time.Now()
	m.keys[key.ID] = &key
	return &key, nil
}

func (m *memStore) ListAPIKeysByApp(_ context.Context, appID string) ([]store.APIKey, error) {
	var out []store.APIKey
	for _, key := range m.keys {
		if key.AppID == appID && key.DeletedAt == nil {
			out = append(out, *key)
		}
	}
	return out, nil
}

func (m *memStore) SoftDeleteAPIKey(_ context.Context, id int64) error {
	key, ok := m.keys[id]
	if !ok || key.DeletedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now()
	key.DeletedAt = &now
	return nil
}

func (m *memStore) CreateStorageConfig(_ context.Context, cfg store.StorageConfig) (*store.StorageConfig, error) {
	m.nextCfgID++
	cfg.ID = m.nextCfgID
	cfg.CreatedAt = time.Now()
	m.configs[cfg.ID] = &cfg
	return &cfg, nil
}

func (m *memStore) FindStorageConfigForUser(_ context.Context, id int64, userID string) (*store.StorageConfig, error) {
	cfg, ok := m.configs[id]
	if !ok || cfg.UserID != userID || cfg.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return cfg, nil
}

func (m *memStore) ListStorageConfigsByUser(_ context.Context, userID string) ([]store.StorageConfig, error) {
	var out []store.StorageConfig
	for _, cfg := range m.configs {
		if cfg.UserID == userID && cfg.DeletedAt == nil {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStorageConfig(_ context.Context, cfg store.StorageConfig) (*store.StorageConfig, error) {
	existing, ok := m.configs[cfg.ID]
	if !ok || existing.UserID != cfg.UserID || existing.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	cfg.CreatedAt = existing.CreatedAt
	m.configs[cfg.ID] = &cfg
	return &cfg, nil
}

func (m *memStore) CountAppsUsingStorage(_ context.Context, storageID int64) (int64, error) {
	var n int64
	for _, app := range m.apps {
		if app.DeletedAt == nil && app.StorageID != nil && *app.StorageID == storageID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SoftDeleteStorageConfig(_ context.Context, id int64, userID string) error {
	cfg, ok := m.configs[id]
	if !ok || cfg.UserID != userID || cfg.DeletedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now()
	cfg.DeletedAt = &now
	return nil
}

func (m *memStore) InsertFile(_ context.Context, f store.File) (*store.File, error) {
	f.CreatedAt = time.Now()
	m.files[f.ID] = &f
	m.fileOrder = append(m.fileOrder, f.ID)
	return &f, nil
}

func (m *memStore) ListFilesByApp(_ context.Context, appID string, limit, offset int) ([]store.File, error) {
	var live []store.File
	for i := len(m.fileOrder) - 1; i >= 0; i-- {
		f := m.files[m.fileOrder[i]]
		if f.AppID == appID && f.DeletedAt == nil {
			live = append(live, *f)
		}
	}
	if offset >= len(live) {
		return nil, nil
	}
	live = live[offset:]
	if len(live) > limit {
		live = live[:limit]
	}
	return live, nil
}

func (m *memStore) CountFilesByApp(_ context.Context, appID string) (int64, error) {
	var n int64
	for _, f := range m.files {
		if f.AppID == appID && f.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SoftDeleteFile(_ context.Context, fileID string) (*store.File, error) {
	f, ok := m.files[fileID]
	if !ok || f.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	now := time.Now()
	f.DeletedAt = &now
	return f, nil
}

func (m *memStore) FindFileInApp(_ context.Context, fileID, appID string) (*store.File, error) {
	f, ok := m.files[fileID]
	if !ok || f.AppID != appID || f.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return f, nil
}

// Seeded fixtures shared by the scenario tests.
const (
	seedAPIKey    = "abc123"
	seedClientID  = "client-1"
	seedAppID     = "A1"
	seedUserID    = "U1"
	seedSession   = "sess-1"
)

func seededStore() *memStore {
	m := newMemStore()
	m.users[seedUserID] = &store.User{ID: seedUserID, Name: "Owner", Email: "owner@example.com"}
	m.sessions[seedSession] = &store.Session{Token: seedSession, UserID: seedUserID, ExpiresAt: time.Now().Add(time.Hour)}
	m.apps[seedAppID] = &store.App{ID: seedAppID, Name: "demo", UserID: seedUserID, CreatedAt: time.Now()}
	m.nextKeyID++
	m.keys[m.nextKeyID] = &store.APIKey{
		ID:        m.nextKeyID,
		Name:      "seed",
		Secret:    seedAPIKey,
		ClientID:  seedClientID,
		AppID:     seedAppID,
		CreatedAt: time.Now(),
	}
	return m
}

func newTestServer(m *memStore) *httptest.Server {
	log := logger.NewNope()

	fallback := storage.Config{
		Bucket:          "default-bucket",
		Region:          "us-east-1",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	}

	files := service.NewFileService(m)
	uploads := service.NewUploadService(m, fallback)
	apps := service.NewAppService(m)
	configs := service.NewStorageConfigService(m)
	keys := service.NewAPIKeyService(m, time.Hour)

	router := handler.NewRouter(handler.Deps{
		Log:       log,
		Resolver:  auth.NewResolver(m),
		Sessions:  auth.NewSessionAuth(m),
		Open:      handler.NewOpen(files, uploads, log),
		Dashboard: handler.NewDashboard(apps, configs, keys, files, uploads, log),
		Token:     handler.NewToken(keys, log),
		ReadyChecks: health.Checks{
			"store": func(context.Context) error { return nil },
		},
	})

	return httptest.NewServer(router)
}
