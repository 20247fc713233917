package submission

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"health-intake/internal/intake"
	"health-intake/internal/platform/storage"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle    State = "idle"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Progress labels shown while a submission is in flight.
const (
	ProgressRendering = "PDFレポートを作成しています..."
	ProgressPreparing = "データを送信準備中..."
	ProgressSaving    = "スプレッドシートへ保存中..."
)

// FailureMessage is the only failure reason shown to the user.
const FailureMessage = "データを送信できませんでした。送信先のURLが正しいか確認してください。"

var (
	// ErrSubmissionFailed wraps every pipeline failure; the cause is for logs.
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// Renderer produces the report document for a record.
type Renderer interface {
	Render(ctx context.Context, r intake.PatientRecord) ([]byte, error)
}

// Storage delivers an encoded envelope to the storage endpoint.
type Storage interface {
	Post(ctx context.Context, payload []byte) (*storage.Response, error)
}

// Status is what the presentation layer sees of the coordinator.
type Status struct {
	State    State  `json:"state"`
	InFlight bool   `json:"inFlight"`
	Progress string `json:"progress,omitempty"`
	Message  string `json:"message,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

type Receipt struct {
	FileURL string
	Message string
}

// Coordinator runs render, encode, envelope and store in sequence. One
// coordinator serves one session.
type Coordinator struct {
	renderer Renderer
	storage  Storage
	logger   *zap.Logger

	// OnProgress, when set, is called with every progress label.
	OnProgress func(label string)

	mu     sync.Mutex
	status Status
}

func NewCoordinator(renderer Renderer, store Storage, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		renderer: renderer,
		storage:  store,
		logger:   logger,
		status:   Status{State: StateIdle},
	}
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Reset returns the coordinator to idle. It does nothing while in flight.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.InFlight {
		c.status = Status{State: StateIdle}
	}
}

func (c *Coordinator) progress(label string) {
	c.mu.Lock()
	c.status.Progress = label
	hook := c.OnProgress
	c.mu.Unlock()
	if hook != nil {
		hook(label)
	}
}

func (c *Coordinator) finish(receipt *Receipt, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = Status{State: StateError, Message: FailureMessage}
		return
	}
	c.status = Status{State: StateSuccess, Message: receipt.Message, FileURL: receipt.FileURL}
}

// Submit renders r, wraps it in an envelope and posts it. Any failure ends in
// StateError and an error wrapping ErrSubmissionFailed; nothing is retried.
func (c *Coordinator) Submit(ctx context.Context, r intake.PatientRecord) (*Receipt, error) {
	c.mu.Lock()
	if c.status.InFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.status = Status{State: StateIdle, InFlight: true}
	c.mu.Unlock()

	receipt, err := c.submit(ctx, r)
	if err != nil {
		c.logger.Error("Submission failed", zap.String("full_name", r.FullName), zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	} else {
		c.logger.Info("Submission stored", zap.String("full_name", r.FullName), zap.String("file_url", receipt.FileURL))
	}
	c.finish(receipt, err)
	return receipt, err
}

func (c *Coordinator) submit(ctx context.Context, r intake.PatientRecord) (*Receipt, error) {
	c.progress(ProgressRendering)
	doc, err := c.renderer.Render(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	c.progress(ProgressPreparing)
	payload, err := json.Marshal(BuildEnvelope(r, base64.StdEncoding.EncodeToString(doc)))
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	c.progress(ProgressSaving)
	resp, err := c.storage.Post(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &Receipt{FileURL: resp.FileURL, Message: resp.Message}, nil
}
