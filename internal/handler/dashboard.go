package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/service"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

type appJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StorageID   *int64    `json:"storageId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type apiKeyJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Secret    string    `json:"key"`
	ClientID  string    `json:"clientId"`
	AppID     string    `json:"appId"`
	CreatedAt time.Time `json:"createdAt"`
}

type storageConfigJSON struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Bucket          string    `json:"bucket"`
	Region          string    `json:"region"`
	AccessKeyID     string    `json:"accessKeyId"`
	SecretAccessKey string    `json:"secretAccessKey"`
	Endpoint        string    `json:"endpoint,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toAppJSON(app *store.App) appJSON {
	return appJSON{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		StorageID:   app.StorageID,
		CreatedAt:   app.CreatedAt,
	}
}

func toAPIKeyJSON(key *store.APIKey) apiKeyJSON {
	return apiKeyJSON{
		ID:        key.ID,
		Name:      key.Name,
		Secret:    key.Secret,
		ClientID:  key.ClientID,
		AppID:     key.AppID,
		CreatedAt: key.CreatedAt,
	}
}

func toStorageConfigJSON(cfg *store.StorageConfig) storageConfigJSON {
	return storageConfigJSON{
		ID:              cfg.ID,
		Name:            cfg.Name,
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Endpoint:        cfg.Endpoint,
		CreatedAt:       cfg.CreatedAt,
	}
}

// Dashboard serves the session-protected management API. It shares the
// service layer with the open API; only the caller resolution differs.
type Dashboard struct {
	apps    *service.AppService
	configs *service.StorageConfigService
	keys    *service.APIKeyService
	files   *service.FileService
	uploads *service.UploadService
	log     *slog.Logger
}

// NewDashboard creates the dashboard handler set.
func NewDashboard(
	apps *service.AppService,
	configs *service.StorageConfigService,
	keys *service.APIKeyService,
	files *service.FileService,
	uploads *service.UploadService,
	log *slog.Logger,
) *Dashboard {
	return &Dashboard{apps: apps, configs: configs, keys: keys, files: files, uploads: uploads, log: log}
}

// Routes mounts the dashboard operations on a router.
func (h *Dashboard) Routes(r chi.Router) {
	r.Route("/apps", func(r chi.Router) {
		r.Post("/", h.createApp)
		r.Get("/", h.listApps)

		r.Route("/{appID}", func(r chi.Router) {
			r.Get("/", h.getApp)
			r.Delete("/", h.deleteApp)
			r.Put("/storage", h.setAppStorage)

			r.Post("/keys", h.createAPIKey)
			r.Get("/keys", h.listAPIKeys)

			r.Get("/files", h.listFiles)
			r.Post("/files", h.saveFile)
			r.Post("/files/presign", h.presignUpload)
			r.Delete("/files/{fileID}", h.deleteFile)
		})
	})

	r.Delete("/keys/{keyID}", h.deleteAPIKey)

	r.Route("/storage-configs", func(r chi.Router) {
		r.Post("/", h.createStorageConfig)
		r.Get("/", h.listStorageConfigs)
		r.Get("/{configID}", h.getStorageConfig)
		r.Put("/{configID}", h.updateStorageConfig)
		r.Delete("/{configID}", h.deleteStorageConfig)
	})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, httperr.ErrBadRequest("invalid id")
	}
	return id, nil
}

func (h *Dashboard) createApp(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	app, err := h.apps.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAppJSON(app))
}

func (h *Dashboard) listApps(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	apps, err := h.apps.List(r.Context(), userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	out := make([]appJSON, 0, len(apps))
	for i := range apps {
		out = append(out, toAppJSON(&apps[i]))
	}
	respondJSON(w, http.StatusOK, struct {
		Apps []appJSON `json:"apps"`
	}{Apps: out})
}

func (h *Dashboard) getApp(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	app, err := h.apps.Get(r.Context(), chi.URLParam(r, "appID"), userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toAppJSON(app))
}

func (h *Dashboard) deleteApp(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	if err := h.apps.Delete(r.Context(), chi.URLParam(r, "appID"), userID); err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Dashboard) setAppStorage(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	var req struct {
		StorageID *int64 `json:"storageId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	app, err := h.apps.SetStorage(r.Context(), chi.URLParam(r, "appID"), userID, req.StorageID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toAppJSON(app))
}

func (h *Dashboard) createAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	key, err := h.keys.Create(r.Context(), chi.URLParam(r, "appID"), userID, req.Name)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAPIKeyJSON(key))
}

func (h *Dashboard) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	keys, err := h.keys.List(r.Context(), chi.URLParam(r, "appID"), userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	out := make([]apiKeyJSON, 0, len(keys))
	for i := range keys {
		out = append(out, toAPIKeyJSON(&keys[i]))
	}
	respondJSON(w, http.StatusOK, struct {
		Keys []apiKeyJSON `json:"keys"`
	}{Keys: out})
}

func (h *Dashboard) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	keyID, err := idParam(r, "keyID")
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	if err := h.keys.Delete(r.Context(), keyID, userID); err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Dashboard) createStorageConfig(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	in, err := decodeStorageConfigInput(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	cfg, err := h.configs.Create(r.Context(), userID, in)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toStorageConfigJSON(cfg))
}

func (h *Dashboard) listStorageConfigs(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	cfgs, err := h.configs.List(r.Context(), userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	out := make([]storageConfigJSON, 0, len(cfgs))
	for i := range cfgs {
		out = append(out, toStorageConfigJSON(&cfgs[i]))
	}
	respondJSON(w, http.StatusOK, struct {
		StorageConfigs []storageConfigJSON `json:"storageConfigs"`
	}{StorageConfigs: out})
}

func (h *Dashboard) getStorageConfig(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	configID, err := idParam(r, "configID")
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	cfg, err := h.configs.Get(r.Context(), configID, userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toStorageConfigJSON(cfg))
}

func (h *Dashboard) updateStorageConfig(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	configID, err := idParam(r, "configID")
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	in, err := decodeStorageConfigInput(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	cfg, err := h.configs.Update(r.Context(), configID, userID, in)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toStorageConfigJSON(cfg))
}

func (h *Dashboard) deleteStorageConfig(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	configID, err := idParam(r, "configID")
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	if err := h.configs.Delete(r.Context(), configID, userID); err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func decodeStorageConfigInput(r *http.Request) (service.StorageConfigInput, error) {
	var req struct {
		Name            string `json:"name"`
		Bucket          string `json:"bucket"`
		Region          string `json:"region"`
		AccessKeyID     string `json:"accessKeyId"`
		SecretAccessKey string `json:"secretAccessKey"`
		Endpoint        string `json:"endpoint"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return service.StorageConfigInput{}, err
	}
	return service.StorageConfigInput{
		Name:            req.Name,
		Bucket:          req.Bucket,
		Region:          req.Region,
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
		Endpoint:        req.Endpoint,
	}, nil
}

// appIdentity builds the upload/file context for a dashboard call the
// same way credential resolution does for the open API, after checking
// the app belongs to the session user.
func (h *Dashboard) appIdentity(r *http.Request, userID string) (*auth.Identity, error) {
	app, err := h.apps.Get(r.Context(), chi.URLParam(r, "appID"), userID)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{App: *app, User: store.User{ID: userID}}, nil
}

func (h *Dashboard) listFiles(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	ident, err := h.appIdentity(r, userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	page := queryInt(r, "page", service.DefaultPage)
	limit := queryInt(r, "limit", service.DefaultLimit)

	list, err := h.files.List(r.Context(), ident.App.ID, page, limit)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Files []fileJSON `json:"files"`
		Total int64      `json:"total"`
		Page  int        `json:"page"`
		Limit int        `json:"limit"`
	}{
		Files: toFileList(list.Files),
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
	})
}

func (h *Dashboard) saveFile(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	ident, err := h.appIdentity(r, userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	var req struct {
		Name string `json:"name"`
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	f, err := h.files.Save(r.Context(), ident, req.Name, req.Path, req.Type)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toFileJSON(f))
}

func (h *Dashboard) presignUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	ident, err := h.appIdentity(r, userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
		StorageID   *int64 `json:"storageId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	up, err := h.uploads.CreatePresignedUpload(r.Context(), ident, service.UploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		StorageID:   req.StorageID,
	})
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		URL    string `json:"url"`
		Method string `json:"method"`
		Key    string `json:"key"`
	}{URL: up.URL, Method: up.Method, Key: up.Key})
}

func (h *Dashboard) deleteFile(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	ident, err := h.appIdentity(r, userID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	f, err := h.files.Delete(r.Context(), ident.App.ID, chi.URLParam(r, "fileID"))
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toFileJSON(f))
}
