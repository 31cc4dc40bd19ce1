// Package handler exposes the service layer over HTTP: the credentialed
// open API, the session-protected dashboard API, token issuance and
// health probes. Handlers decode, delegate and render; business rules
// live in internal/service.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/uploadhub/internal/service"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

type appRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type userRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type fileJSON struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"contentType"`
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

func toAppRef(app store.App) appRef {
	return appRef{ID: app.ID, Name: app.Name, Description: app.Description}
}

func toFileJSON(f *store.File) fileJSON {
	return fileJSON{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Path:        f.Path,
		URL:         f.URL,
		CreatedAt:   f.CreatedAt,
		DeletedAt:   f.DeletedAt,
	}
}

func toFileList(files []store.File) []fileJSON {
	out := make([]fileJSON, 0, len(files))
	for i := range files {
		out = append(out, toFileJSON(&files[i]))
	}
	return out
}

// Open serves the credentialed cross-origin API. Every route runs behind
// the Credentials middleware, so handlers can assume a resolved identity.
type Open struct {
	files   *service.FileService
	uploads *service.UploadService
	log     *slog.Logger
}

// NewOpen creates the open-API handler set.
func NewOpen(files *service.FileService, uploads *service.UploadService, log *slog.Logger) *Open {
	return &Open{files: files, uploads: uploads, log: log}
}

// Routes mounts the open operations on a router.
func (h *Open) Routes(r chi.Router) {
	r.Get("/getFiles", h.getFiles)
	r.Post("/createPresignedUrl", h.createPresignedURL)
	r.Post("/saveFile", h.saveFile)
	r.Delete("/deleteFile/{fileID}", h.deleteFile)
	r.Get("/getAppInfo", h.getAppInfo)
}

// queryInt reads an optional positive integer query parameter, falling
// back to def when absent. Present-but-garbage values are rejected by the
// service's own validation, so -1 is passed through on parse failure.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

func (h *Open) getFiles(w http.ResponseWriter, r *http.Request) {
	ident, err := identity(r)
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
		App   appRef     `json:"app"`
	}{
		Files: toFileList(list.Files),
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
		App:   toAppRef(ident.App),
	})
}

func (h *Open) createPresignedURL(w http.ResponseWriter, r *http.Request) {
	ident, err := identity(r)
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
		App    appRef `json:"app"`
	}{
		URL:    up.URL,
		Method: up.Method,
		Key:    up.Key,
		App:    toAppRef(ident.App),
	})
}

func (h *Open) saveFile(w http.ResponseWriter, r *http.Request) {
	ident, err := identity(r)
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

	respondJSON(w, http.StatusCreated, fileWithApp(f, ident.App))
}

func (h *Open) deleteFile(w http.ResponseWriter, r *http.Request) {
	ident, err := identity(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	f, err := h.files.Delete(r.Context(), ident.App.ID, chi.URLParam(r, "fileID"))
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, fileWithApp(f, ident.App))
}

func (h *Open) getAppInfo(w http.ResponseWriter, r *http.Request) {
	ident, err := identity(r)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		App  appRef  `json:"app"`
		User userRef `json:"user"`
	}{
		App:  toAppRef(ident.App),
		User: userRef{ID: ident.User.ID, Name: ident.User.Name, Email: ident.User.Email},
	})
}

type fileWithAppJSON struct {
	fileJSON
	App appRef `json:"app"`
}

func fileWithApp(f *store.File, app store.App) fileWithAppJSON {
	return fileWithAppJSON{fileJSON: toFileJSON(f), App: toAppRef(app)}
}
