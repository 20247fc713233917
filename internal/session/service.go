package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"health-intake/internal/intake"
	"health-intake/internal/submission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRejected is returned when the wizard refuses a change: an unknown field,
// a derived field or a value outside its option list.
var ErrRejected = errors.New("value rejected")

var (
	// ErrNotAtReview refuses a submission from any step but the review step.
	ErrNotAtReview = errors.New("submission is only possible from the review step")
	// ErrAlreadySubmitted refuses a second submission until the session is reset.
	ErrAlreadySubmitted = errors.New("already submitted; reset to start a new questionnaire")
)

// Renderer draws the report for preview and for submission.
type Renderer interface {
	Render(ctx context.Context, r intake.PatientRecord) ([]byte, error)
	FileName(r intake.PatientRecord) string
}

// BodyPartInput adds an entry either from a body-map zone or by name.
type BodyPartInput struct {
	ZoneID   string
	PartName string
	Side     intake.Side
	Symptom  string
	Level    int
}

type HistoryInput struct {
	Diseases    []string
	Other       *string
	Medications *string
}

type Service interface {
	Create(ctx context.Context) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	UpdateField(ctx context.Context, id uuid.UUID, field intake.Field, value string) (*View, error)
	SetHistory(ctx context.Context, id uuid.UUID, in HistoryInput) (*View, error)
	AddBodyPart(ctx context.Context, id uuid.UUID, in BodyPartInput) (*View, intake.BodyPartRecord, error)
	RemoveBodyPart(ctx context.Context, id uuid.UUID, partID string) (*View, error)
	Advance(ctx context.Context, id uuid.UUID) (*View, error)
	Retreat(ctx context.Context, id uuid.UUID) (*View, error)
	Reset(ctx context.Context, id uuid.UUID) (*View, error)
	RenderReport(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Submit(ctx context.Context, id uuid.UUID) (*View, error)
}

type service struct {
	repo     Repository
	renderer Renderer
	storage  submission.Storage
	logger   *zap.Logger

	mu           sync.Mutex
	locks        map[uuid.UUID]*sync.Mutex
	coordinators map[uuid.UUID]*submission.Coordinator
}

func NewService(repo Repository, renderer Renderer, storage submission.Storage, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		renderer:     renderer,
		storage:      storage,
		logger:       logger,
		locks:        make(map[uuid.UUID]*sync.Mutex),
		coordinators: make(map[uuid.UUID]*submission.Coordinator),
	}
}

// lock serializes mutations of one session.
func (s *service) lock(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *service) coordinator(id uuid.UUID) *submission.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coordinators[id]
	if !ok {
		c = submission.NewCoordinator(s.renderer, s.storage, s.logger.With(zap.String("session_id", id.String())))
		s.coordinators[id] = c
	}
	return c
}

// status prefers the live coordinator state while a submission runs here.
func (s *service) status(sess *Session) submission.Status {
	s.mu.Lock()
	c, ok := s.coordinators[sess.ID]
	s.mu.Unlock()
	if ok && c.Status().InFlight {
		return c.Status()
	}
	return sess.Submission
}

func (s *service) view(sess *Session) *View {
	return sess.view(s.status(sess))
}

func (s *service) Create(ctx context.Context) (*View, error) {
	sess := newSession()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("Session created", zap.String("session_id", sess.ID.String()))
	return s.view(sess), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// mutate loads the session, applies fn to its wizard and saves the result.
// When fn fails nothing is saved.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(w *intake.Wizard, sess *Session) error) (*View, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w := sess.wizard()
	if err := fn(w, sess); err != nil {
		return nil, err
	}
	sess.apply(w)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *service) UpdateField(ctx context.Context, id uuid.UUID, field intake.Field, value string) (*View, error) {
	return s.mutate(ctx, id, func(w *intake.Wizard, _ *Session) error {
		if !w.UpdateField(field, value) {
			return ErrRejected
		}
		return nil
	})
}

func (s *service) SetHistory(ctx context.Context, id uuid.UUID, in HistoryInput) (*View, error) {
	return s.mutate(ctx, id, func(w *intake.Wizard, _ *Session) error {
		r := w.Record()
		h := intake.History{Diseases: in.Diseases, Other: r.HistoryOther, Medications: r.Medications}
		if in.Other != nil {
			h.Other = *in.Other
		}
		if in.Medications != nil {
			h.Medications = *in.Medications
		}
		if !w.SetHistory(h) {
			return ErrRejected
		}
		return nil
	})
}

func (s *service) AddBodyPart(ctx context.Context, id uuid.UUID, in BodyPartInput) (*View, intake.BodyPartRecord, error) {
	var added intake.BodyPartRecord
	v, err := s.mutate(ctx, id, func(w *intake.Wizard, _ *Session) error {
		var err error
		if in.ZoneID != "" {
			added, err = w.AddBodyPartFromZone(in.ZoneID, in.Symptom, in.Level)
		} else {
			added, err = w.AddBodyPart(intake.BodyPartRecord{
				PartName: in.PartName,
				Side:     in.Side,
				Symptom:  in.Symptom,
				Level:    in.Level,
			})
		}
		return err
	})
	return v, added, err
}

// RemoveBodyPart is a no-op for unknown part ids.
func (s *service) RemoveBodyPart(ctx context.Context, id uuid.UUID, partID string) (*View, error) {
	return s.mutate(ctx, id, func(w *intake.Wizard, _ *Session) error {
		w.RemoveBodyPart(partID)
		return nil
	})
}

func (s *service) move(ctx context.Context, id uuid.UUID, step func(w *intake.Wizard) bool) (*View, error) {
	var moved bool
	v, err := s.mutate(ctx, id, func(w *intake.Wizard, _ *Session) error {
		moved = step(w)
		return nil
	})
	if v != nil {
		v.Moved = &moved
	}
	return v, err
}

// Advance refuses silently: the view reports moved=false.
func (s *service) Advance(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.move(ctx, id, (*intake.Wizard).Advance)
}

func (s *service) Retreat(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.move(ctx, id, (*intake.Wizard).Retreat)
}

// Reset clears the record, returns to the first step and the submission
// status to idle.
func (s *service) Reset(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(w *intake.Wizard, sess *Session) error {
		c := s.coordinator(id)
		if c.Status().InFlight {
			return submission.ErrSubmissionInFlight
		}
		c.Reset()
		w.Reset()
		sess.Submission = submission.Status{State: submission.StateIdle}
		return nil
	})
}

func (s *service) RenderReport(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := s.renderer.Render(ctx, sess.Record)
	if err != nil {
		s.logger.Error("Failed to render report", zap.String("session_id", id.String()), zap.Error(err))
		return nil, "", err
	}
	return doc, s.renderer.FileName(sess.Record), nil
}

// Submit sends the session's record through the submission pipeline. The
// session lock is not held while the pipeline runs, so the session can be
// read for progress meanwhile. A failed submission returns the view together
// with an error wrapping submission.ErrSubmissionFailed.
func (s *service) Submit(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != intake.StepReview {
		return nil, ErrNotAtReview
	}
	if sess.Submission.State == submission.StateSuccess {
		return nil, ErrAlreadySubmitted
	}

	c := s.coordinator(id)
	_, submitErr := c.Submit(ctx, sess.Record)
	if errors.Is(submitErr, submission.ErrSubmissionInFlight) {
		return nil, submitErr
	}

	status := c.Status()
	v, err := s.mutate(ctx, id, func(_ *intake.Wizard, sess *Session) error {
		sess.Submission = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, submitErr
}
