package expense

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/interchange"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// maxUploadBytes caps the multipart form size on import.
const maxUploadBytes = 10 << 20

type ServiceAPI interface {
	List(userID string) ([]*Expense, error)
	Create(userID string, dto ExpenseDTO) (*Expense, error)
	Update(id, userID string, dto ExpenseDTO) (*Expense, error)
	Delete(id, userID string) error
	Summarize(userID string) (*Summary, error)
	Export(format interchange.Format) (*ExportResult, error)
	Import(userID, path string) ([]*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	UploadDir string
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI, uploadDir string) *Handler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Handler{
		BaseHandler: base,
		Service:     service,
		UploadDir:   uploadDir,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	expenses, err := h.Service.List(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.From(r.Context()).Warn("create: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "validation error", "invalid request body")
		return
	}

	created, err := h.Service.Create(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.From(r.Context()).Warn("update: invalid request body", "error", err, "expense_id", id)
		h.WriteError(w, http.StatusBadRequest, "validation error", "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "expense deleted successfully"})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	summary, err := h.Service.Summarize(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	format, ok := interchange.ParseFormat(chi.URLParam(r, "format"))
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid format", "")
		return
	}

	result, err := h.Service.Export(format)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	if _, err := w.Write(result.Data); err != nil {
		logger.From(r.Context()).Error("failed to write export response", "error", err)
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.From(r.Context()).Warn("import: failed to parse form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "no file uploaded", "")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "no file uploaded", "")
		return
	}
	defer file.Close()

	path, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		logger.From(r.Context()).Error("import: failed to spool upload", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "import failed", "")
		return
	}

	imported, err := h.Service.Import(user.ID, path)
	if err != nil {
		// The temp file stays behind on this path; cleanup only runs after
		// a successful import.
		h.HandleServiceError(w, err)
		return
	}

	if err := os.Remove(path); err != nil {
		logger.From(r.Context()).Warn("import: failed to remove temp file", "error", err, "path", path)
	}

	h.WriteJSON(w, http.StatusOK, ImportResponse{
		Message:  "expenses imported successfully",
		Count:    len(imported),
		Expenses: imported,
	})
}

// spoolUpload writes the uploaded part to a temp file so the parser can
// operate on a regular file, keeping the original extension for format
// detection.
func (h *Handler) spoolUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp(h.UploadDir, "import-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
