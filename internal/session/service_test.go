package session

import (
	"context"
	"errors"
	"testing"

	"health-intake/internal/intake"
	"health-intake/internal/platform/storage"
	"health-intake/internal/submission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(_ context.Context, r intake.PatientRecord) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + r.FullName), nil
}

func (f *fakeRenderer) FileName(r intake.PatientRecord) string {
	return "HealthCheck_" + r.FullName + ".pdf"
}

type fakeStorage struct {
	err      error
	payloads [][]byte
}

func (f *fakeStorage) Post(_ context.Context, payload []byte) (*storage.Response, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Response{Status: storage.StatusSuccess, FileURL: "https://files.test/report.pdf"}, nil
}

func newTestService() (Service, *fakeRenderer, *fakeStorage) {
	r := &fakeRenderer{}
	s := &fakeStorage{}
	return NewService(NewMemoryRepository(), r, s, zap.NewNop()), r, s
}

// createAtReview returns a session walked to the review step.
func createAtReview(t *testing.T, svc Service, name string) *View {
	t.Helper()
	v, err := svc.Create(context.Background())
	require.NoError(t, err)
	return walkToReview(t, svc, v.ID, name)
}

func walkToReview(t *testing.T, svc Service, id uuid.UUID, name string) *View {
	t.Helper()
	ctx := context.Background()
	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	for field, value := range map[intake.Field]string{
		intake.FieldFullName:        name,
		intake.FieldFallHistory:     "いいえ",
		intake.FieldUnstableFeeling: "いいえ",
		intake.FieldFearOfFalling:   "いいえ",
	} {
		_, err = svc.UpdateField(ctx, v.ID, field, value)
		require.NoError(t, err)
	}
	for v.Step < intake.StepReview {
		v, err = svc.Advance(ctx, v.ID)
		require.NoError(t, err)
		require.True(t, *v.Moved)
	}
	return v
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	v, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, intake.StepBasicInfo, v.Step)
	assert.False(t, v.CanAdvance)
	assert.True(t, v.CanAddBodyPart)
	assert.Equal(t, submission.StateIdle, v.Submission.State)

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_UpdateFieldAndAdvance(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)

	v, err = svc.Advance(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Moved)
	assert.False(t, *v.Moved)
	assert.Equal(t, intake.StepBasicInfo, v.Step)

	v, err = svc.UpdateField(ctx, v.ID, intake.FieldFullName, "田中花子")
	require.NoError(t, err)
	assert.True(t, v.CanAdvance)

	v, err = svc.Advance(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, *v.Moved)
	assert.Equal(t, intake.StepConcerns, v.Step)

	v, err = svc.Retreat(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, intake.StepBasicInfo, v.Step)
}

func TestService_UpdateFieldRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.UpdateField(ctx, v.ID, intake.FieldGender, "other")
	assert.ErrorIs(t, err, ErrRejected)
	_, err = svc.UpdateField(ctx, v.ID, "bmi", "99")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestService_BodyParts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)

	var first intake.BodyPartRecord
	for i := 0; i < intake.MaxBodyParts; i++ {
		var added intake.BodyPartRecord
		v, added, err = svc.AddBodyPart(ctx, v.ID, BodyPartInput{ZoneID: "waist", Symptom: "痛い", Level: i % 11})
		require.NoError(t, err)
		if i == 0 {
			first = added
		}
	}
	assert.False(t, v.CanAddBodyPart)

	_, _, err = svc.AddBodyPart(ctx, v.ID, BodyPartInput{PartName: "膝", Side: intake.SideLeft, Symptom: "痛い", Level: 1})
	assert.ErrorIs(t, err, intake.ErrBodyPartLimit)

	v, err = svc.RemoveBodyPart(ctx, v.ID, "unknown")
	require.NoError(t, err)
	assert.Len(t, v.Record.BodyParts, intake.MaxBodyParts)

	v, err = svc.RemoveBodyPart(ctx, v.ID, first.ID)
	require.NoError(t, err)
	assert.Len(t, v.Record.BodyParts, intake.MaxBodyParts-1)
	assert.True(t, v.CanAddBodyPart)

	_, _, err = svc.AddBodyPart(ctx, v.ID, BodyPartInput{ZoneID: "tail", Symptom: "痛い", Level: 1})
	assert.ErrorIs(t, err, intake.ErrUnknownZone)
}

func TestService_SetHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)

	meds := "降圧剤"
	v, err = svc.SetHistory(ctx, v.ID, HistoryInput{Diseases: []string{"高血圧", "糖尿病"}, Medications: &meds})
	require.NoError(t, err)
	assert.Equal(t, []string{"高血圧", "糖尿病"}, v.Record.Diseases)
	assert.Equal(t, "降圧剤", v.Record.Medications)

	v, err = svc.SetHistory(ctx, v.ID, HistoryInput{Diseases: []string{"高血圧"}})
	require.NoError(t, err)
	assert.Equal(t, "降圧剤", v.Record.Medications, "omitted fields are kept")

	_, err = svc.SetHistory(ctx, v.ID, HistoryInput{Diseases: []string{"風邪"}})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestService_SubmitSuccessKeepsRecordUntilReset(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()
	v := createAtReview(t, svc, "田中花子")

	v, err := svc.Submit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateSuccess, v.Submission.State)
	assert.Equal(t, "https://files.test/report.pdf", v.Submission.FileURL)
	assert.Equal(t, "田中花子", v.Record.FullName)
	assert.Len(t, store.payloads, 1)

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateSuccess, got.Submission.State)

	v, err = svc.Reset(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateIdle, v.Submission.State)
	assert.Equal(t, intake.StepBasicInfo, v.Step)
	assert.Equal(t, intake.NewPatientRecord(), v.Record)
}

func TestService_SubmitFailure(t *testing.T) {
	ctx := context.Background()
	svc, renderer, store := newTestService()
	v := createAtReview(t, svc, "田中花子")

	renderer.err = errors.New("no font")
	v, err := svc.Submit(ctx, v.ID)
	assert.ErrorIs(t, err, submission.ErrSubmissionFailed)
	require.NotNil(t, v)
	assert.Equal(t, submission.StateError, v.Submission.State)
	assert.Equal(t, submission.FailureMessage, v.Submission.Message)
	assert.Empty(t, store.payloads)

	renderer.err = nil
	v, err = svc.Submit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateSuccess, v.Submission.State)
}

func TestService_SubmitRefusedBeforeReview(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotAtReview)
	assert.Empty(t, store.payloads)

	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateIdle, got.Submission.State)
}

func TestService_SubmitRefusedAfterSuccess(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()
	v := createAtReview(t, svc, "田中花子")

	_, err := svc.Submit(ctx, v.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, v.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, store.payloads, 1)

	_, err = svc.Reset(ctx, v.ID)
	require.NoError(t, err)
	walkToReview(t, svc, v.ID, "山田太郎")
	_, err = svc.Submit(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, store.payloads, 2)
}

func TestService_RenderReport(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.UpdateField(ctx, v.ID, intake.FieldFullName, "山田太郎")
	require.NoError(t, err)

	doc, name, err := svc.RenderReport(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-山田太郎"), doc)
	assert.Equal(t, "HealthCheck_山田太郎.pdf", name)
}

func TestService_ReviewLinesOnLastStep(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	v, err := svc.Create(ctx)
	require.NoError(t, err)
	for field, value := range map[intake.Field]string{
		intake.FieldFullName:        "田中花子",
		intake.FieldFallHistory:     "いいえ",
		intake.FieldUnstableFeeling: "いいえ",
		intake.FieldFearOfFalling:   "いいえ",
	} {
		_, err = svc.UpdateField(ctx, v.ID, field, value)
		require.NoError(t, err)
	}
	for v.Step < intake.StepReview {
		assert.Empty(t, v.Review)
		v, err = svc.Advance(ctx, v.ID)
		require.NoError(t, err)
		require.True(t, *v.Moved)
	}
	assert.NotEmpty(t, v.Review)
	assert.False(t, v.CanAdvance)
}
