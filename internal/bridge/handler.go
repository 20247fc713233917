package bridge

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"health-intake/internal/platform/blobstore"
	"health-intake/internal/platform/storage"
	"health-intake/internal/report"
	"health-intake/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds one submission, document included.
const MaxBodyBytes = 32 << 20

// JST is the zone stored file names and ledger timestamps are written in.
var JST = time.FixedZone("JST", 9*60*60)

// Handler is the storage endpoint: it keeps the document in a blob store and
// appends a ledger row for every submission.
type Handler struct {
	ledger *Ledger
	blobs  blobstore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(ledger *Ledger, blobs blobstore.Store, logger *zap.Logger) *Handler {
	return &Handler{ledger: ledger, blobs: blobs, logger: logger, now: time.Now}
}

func (h *Handler) respond(w http.ResponseWriter, body storage.Response) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// Store handles a submission. It always answers 200; failures are reported
// in the body's status field.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	fileURL, err := h.store(w, r)
	if err != nil {
		h.logger.Error("Failed to store submission", zap.Error(err))
		h.respond(w, storage.Response{Status: storage.StatusError, Message: err.Error()})
		return
	}
	h.respond(w, storage.Response{Status: storage.StatusSuccess, Message: "Data saved successfully", FileURL: fileURL})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	var env submission.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("invalid JSON payload: %w", err)
	}

	at := h.now().In(JST)
	fileURL := NoFile
	if env.PDFFile != "" {
		doc, err := base64.StdEncoding.DecodeString(env.PDFFile)
		if err != nil {
			return "", fmt.Errorf("invalid pdfFile encoding: %w", err)
		}
		fileURL, err = h.blobs.Put(r.Context(), report.FileNameFor(env.FullName, at), doc, "application/pdf")
		if err != nil {
			return "", err
		}
	}

	row, err := h.ledger.Append(at, env.Row(), fileURL)
	if err != nil {
		return "", err
	}
	h.logger.Info("Submission recorded",
		zap.Int("row", row),
		zap.String("full_name", env.FullName),
		zap.String("file_url", fileURL),
	)
	return fileURL, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, storage.Response{Status: "active", Message: "Storage bridge is running"})
}

// File serves a stored document by name.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	data, err := h.blobs.Get(r.Context(), chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, blobstore.ErrBlobNotFound), errors.Is(err, blobstore.ErrInvalidBlobName):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to read stored file", zap.Error(err))
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(data)
}

// Download serves the ledger workbook.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.xlsx"`)
	h.ledger.mu.Lock()
	defer h.ledger.mu.Unlock()
	http.ServeFile(w, r, h.ledger.Path())
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Health)
	r.Post("/", h.Store)
	r.Get("/files/{name}", h.File)
	r.Get("/ledger.xlsx", h.Download)
}
