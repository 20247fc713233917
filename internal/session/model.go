package session

import (
	"time"

	"health-intake/internal/indicator"
	"health-intake/internal/intake"
	"health-intake/internal/submission"

	"github.com/google/uuid"
)

// Session is one questionnaire in progress: the wizard position, the record
// it has collected and the outcome of the last submission.
type Session struct {
	ID         uuid.UUID            `json:"id"`
	Step       intake.Step          `json:"step"`
	Record     intake.PatientRecord `json:"record"`
	Submission submission.Status    `json:"submission"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

func newSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.New(),
		Step:       intake.StepBasicInfo,
		Record:     intake.NewPatientRecord(),
		Submission: submission.Status{State: submission.StateIdle},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Session) clone() *Session {
	c := *s
	c.Record = s.Record.Clone()
	return &c
}

func (s *Session) wizard() *intake.Wizard {
	return intake.RestoreWizard(s.Step, s.Record)
}

func (s *Session) apply(w *intake.Wizard) {
	s.Step = w.Step()
	s.Record = w.Record()
}

// View is what the API returns for a session.
type View struct {
	ID             uuid.UUID            `json:"id"`
	Step           intake.Step          `json:"step"`
	StepTitle      string               `json:"stepTitle"`
	StepCount      int                  `json:"stepCount"`
	CanAdvance     bool                 `json:"canAdvance"`
	CanAddBodyPart bool                 `json:"canAddBodyPart"`
	BPTier         indicator.Tier       `json:"bpTier"`
	BPColor        string               `json:"bpColor"`
	Record         intake.PatientRecord `json:"record"`
	Review         []intake.ReviewLine  `json:"review,omitempty"`
	Submission     submission.Status    `json:"submission"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	// Moved reports whether an advance or retreat changed the step.
	Moved *bool `json:"moved,omitempty"`
}

func (s *Session) view(status submission.Status) *View {
	tier := s.Record.BloodPressureTier()
	v := &View{
		ID:             s.ID,
		Step:           s.Step,
		StepTitle:      s.Step.Title(),
		StepCount:      intake.StepCount,
		CanAdvance:     s.wizard().CanAdvance(),
		CanAddBodyPart: !s.Record.BodyParts.Full(),
		BPTier:         tier,
		BPColor:        tier.Color(),
		Record:         s.Record.Clone(),
		Submission:     status,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Step == intake.StepReview {
		v.Review = s.Record.Review()
	}
	return v
}
