package tips

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/formatting"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Handler provides HTTP endpoints for tips.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "tips"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for tip endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tips",
		Tags:   []string{"Tips"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: auth.RequireAdmin(h.logger, h.Create), OpenAPI: createOp},
			{Method: "POST", Pattern: "/upload", Handler: auth.RequireAdmin(h.logger, h.Upload), OpenAPI: uploadOp},
			{Method: "POST", Pattern: "/suggest", Handler: auth.Require(h.logger, h.Suggest), OpenAPI: suggestOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: auth.RequireAdmin(h.logger, h.Delete)},
			{Method: "GET", Pattern: "/{id}/source", Handler: auth.RequireAdmin(h.logger, h.Source)},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, err := QueryFromValues(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), q)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	t, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[CreateCommand](h, w, r)
	if !ok {
		return
	}

	t, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, t)
}

// Upload accepts a multipart form with a text or markdown "file" whose
// contents become the tip body. Optional "title" and comma-separated "tags"
// fields accompany it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	cmd := UploadCommand{
		Title:       r.FormValue("title"),
		Tags:        splitTags(r.FormValue("tags")),
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}

	t, err := h.sys.Upload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Source streams the document a tip was uploaded from.
func (h *Handler) Source(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Source(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer doc.Body.Close()

	contentType := mime.TypeByExtension(path.Ext(doc.Filename))
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, doc.Body); err != nil {
		h.logger.Warn("tip source stream interrupted", "id", id, "error", err)
	}
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[SuggestCommand](h, w, r)
	if !ok {
		return
	}

	suggestions, err := h.sys.Suggest(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	v, err := handlers.DecodeJSON[T](r)
	if err == nil {
		err = validation.Struct(v)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return v, false
	}
	return v, true
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeTags(strings.Split(raw, ","))
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

var createOp = &openapi.Operation{
	Summary:     "Create tip",
	Description: "Stores a tip and, when embeddings are configured, its vector. Administrators only.",
	RequestBody: openapi.RequestBodyJSON("CreateTipCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created tip", "Tip"),
		400: openapi.ResponseRef("BadRequest"),
		403: openapi.ResponseRef("Forbidden"),
	},
}

var uploadOp = &openapi.Operation{
	Summary:     "Upload tip document",
	Description: "Uploads a text or markdown file whose contents become the tip body. The source document is kept in blob storage.",
	RequestBody: &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {
				Schema: &openapi.Schema{
					Type:     "object",
					Required: []string{"file"},
					Properties: map[string]*openapi.Schema{
						"file":  {Type: "string", Format: "binary"},
						"title": {Type: "string"},
						"tags":  {Type: "string", Description: "Comma-separated tags"},
					},
				},
			},
		},
	},
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created tip", "Tip"),
		400: openapi.ResponseRef("BadRequest"),
		403: openapi.ResponseRef("Forbidden"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		503: openapi.ResponseRef("StorageUnavailable"),
	},
}

var suggestOp = &openapi.Operation{
	Summary:     "Suggest tips",
	Description: "Returns the tips most relevant to the given prompt text.",
	RequestBody: openapi.RequestBodyJSON("SuggestTipsCommand", true),
	Responses: map[int]*openapi.Response{
		200: {Description: "Matching tips"},
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
	},
}

// Responses returns the component responses referenced by tip operations.
func Responses(maxUploadSize int64) map[string]*openapi.Response {
	return map[string]*openapi.Response{
		"PayloadTooLarge": {
			Description: "Upload exceeds " + formatting.FormatBytes(maxUploadSize, 1),
		},
		"StorageUnavailable": {Description: "Blob storage is not configured"},
	}
}

// Schemas returns the component schemas referenced by tip operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Tip": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"title":       {Type: "string"},
				"body":        {Type: "string"},
				"tags":        {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"storage_key": {Type: "string"},
				"embedded":    {Type: "boolean"},
				"created_at":  {Type: "string", Format: "date-time"},
				"updated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"CreateTipCommand": {
			Type:     "object",
			Required: []string{"title", "body"},
			Properties: map[string]*openapi.Schema{
				"title": {Type: "string"},
				"body":  {Type: "string"},
				"tags":  {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"SuggestTipsCommand": {
			Type:     "object",
			Required: []string{"text"},
			Properties: map[string]*openapi.Schema{
				"text":  {Type: "string"},
				"limit": {Type: "integer", Default: DefaultSuggestLimit},
			},
		},
	}
}
