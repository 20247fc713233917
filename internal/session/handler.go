package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"health-intake/internal/indicator"
	"health-intake/internal/intake"
	"health-intake/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	svc      Service
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"max=2000"`
}

type SetHistoryRequest struct {
	Diseases    []string `json:"diseases" validate:"dive,required"`
	Other       *string  `json:"historyOther" validate:"omitempty,max=500"`
	Medications *string  `json:"medications" validate:"omitempty,max=500"`
}

type AddBodyPartRequest struct {
	ZoneID   string `json:"zoneId" validate:"required_without=PartName"`
	PartName string `json:"partName" validate:"required_without=ZoneID,max=50"`
	Side     string `json:"side"`
	Symptom  string `json:"symptom" validate:"required"`
	Level    *int   `json:"level" validate:"required,min=0,max=10"`
}

type IndicatorsRequest struct {
	Height          string `json:"height"`
	Weight          string `json:"weight"`
	BPSystolic      string `json:"bpSystolic"`
	BPDiastolic     string `json:"bpDiastolic"`
	FallHistory     string `json:"fallHistory"`
	UnstableFeeling string `json:"unstableFeeling"`
	FearOfFalling   string `json:"fearOfFalling"`
}

type IndicatorsResponse struct {
	BMI              string             `json:"bmi"`
	BPTier           indicator.Tier     `json:"bpTier"`
	BPColor          string             `json:"bpColor"`
	BPComment        string             `json:"bpComment"`
	FallRiskJudgment indicator.Judgment `json:"fallRiskJudgment"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Status: "error", Message: msg})
}

// fail maps service errors to HTTP responses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, intake.ErrBodyPartLimit):
		writeError(w, http.StatusConflict, intake.ErrBodyPartLimit.Error())
	case errors.Is(err, submission.ErrSubmissionInFlight), errors.Is(err, ErrNotAtReview), errors.Is(err, ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRejected), errors.Is(err, intake.ErrInvalidBodyPart), errors.Is(err, intake.ErrUnknownZone):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Create(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req UpdateFieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.svc.UpdateField(r.Context(), id, intake.Field(req.Field), req.Value)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) SetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req SetHistoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.svc.SetHistory(r.Context(), id, HistoryInput{
		Diseases:    req.Diseases,
		Other:       req.Other,
		Medications: req.Medications,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) AddBodyPart(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req AddBodyPartRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, added, err := h.svc.AddBodyPart(r.Context(), id, BodyPartInput{
		ZoneID:   req.ZoneID,
		PartName: req.PartName,
		Side:     intake.Side(req.Side),
		Symptom:  req.Symptom,
		Level:    *req.Level,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"bodyPart": added, "session": v})
}

func (h *Handler) RemoveBodyPart(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.RemoveBodyPart(r.Context(), id, chi.URLParam(r, "partID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*View, error)) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := fn(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) { h.move(w, r, h.svc.Advance) }

func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) { h.move(w, r, h.svc.Retreat) }

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) { h.move(w, r, h.svc.Reset) }

// Report streams the PDF; ?download=1 makes it an attachment.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	doc, name, err := h.svc.RenderReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			h.fail(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "PDF生成に失敗しました")
		return
	}
	disposition := "inline"
	if r.URL.Query().Get("download") != "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename*=UTF-8''%s", disposition, url.PathEscape(name)))
	_, _ = w.Write(doc)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Submit(r.Context(), id)
	if errors.Is(err, submission.ErrSubmissionFailed) {
		writeJSON(w, http.StatusBadGateway, v)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type catalogResponse struct {
	Steps     []stepInfo             `json:"steps"`
	Diseases  []string               `json:"diseases"`
	Symptoms  []string               `json:"symptoms"`
	Sides     []intake.Side          `json:"sides"`
	Genders   []intake.Gender        `json:"genders"`
	Checkups  []intake.CheckupAnswer `json:"checkups"`
	Injuries  []intake.Injury        `json:"injuries"`
	YesNo     []intake.YesNo         `json:"yesNo"`
	Zones     []intake.Zone          `json:"zones"`
	MaxParts  int                    `json:"maxBodyParts"`
	MaxLength int                    `json:"concernsMaxLength"`
}

type stepInfo struct {
	Step  intake.Step `json:"step"`
	Title string      `json:"title"`
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	steps := make([]stepInfo, 0, intake.StepCount)
	for s := intake.StepBasicInfo; s <= intake.StepReview; s++ {
		steps = append(steps, stepInfo{Step: s, Title: s.Title()})
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Steps:     steps,
		Diseases:  intake.DiseaseOptions,
		Symptoms:  intake.SymptomOptions,
		Sides:     intake.SideOptions,
		Genders:   intake.GenderOptions,
		Checkups:  intake.CheckupOptions,
		Injuries:  intake.InjuryOptions,
		YesNo:     intake.YesNoOptions,
		Zones:     intake.BodyZones,
		MaxParts:  intake.MaxBodyParts,
		MaxLength: intake.ConcernsMaxLength,
	})
}

// Indicators runs the derived-indicator engine on ad hoc values.
func (h *Handler) Indicators(w http.ResponseWriter, r *http.Request) {
	var req IndicatorsRequest
	if !h.decode(w, r, &req) {
		return
	}
	tier := indicator.ClassifyBloodPressure(req.BPSystolic, req.BPDiastolic)
	comment := ""
	if req.BPSystolic != "" && req.BPDiastolic != "" {
		comment = tier.Advice()
	}
	writeJSON(w, http.StatusOK, IndicatorsResponse{
		BMI:              indicator.ComputeBMI(req.Height, req.Weight),
		BPTier:           tier,
		BPColor:          tier.Color(),
		BPComment:        comment,
		FallRiskJudgment: indicator.JudgeFallRisk(req.FallHistory, req.UnstableFeeling, req.FearOfFalling),
	})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/catalog", h.Catalog)
	r.Post("/indicators", h.Indicators)

	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Patch("/fields", h.UpdateField)
		r.Put("/diseases", h.SetHistory)
		r.Post("/body-parts", h.AddBodyPart)
		r.Delete("/body-parts/{partID}", h.RemoveBodyPart)
		r.Post("/advance", h.Advance)
		r.Post("/retreat", h.Retreat)
		r.Post("/reset", h.Reset)
		r.Get("/report.pdf", h.Report)
		r.Post("/submit", h.Submit)
	})
}
