package intake

import (
	"health-intake/internal/indicator"
)

type Gender string

const (
	GenderUnset    Gender = ""
	GenderMale     Gender = "男"
	GenderFemale   Gender = "女"
	GenderNoAnswer Gender = "答えたくない"
)

// CheckupAnswer answers the "have you had a checkup" questions.
type CheckupAnswer string

const (
	CheckupUnset   CheckupAnswer = ""
	CheckupYes     CheckupAnswer = "ある"
	CheckupNo      CheckupAnswer = "ない"
	CheckupUnknown CheckupAnswer = "分からない"
)

// YesNo answers one 3KQ screening question.
type YesNo string

const (
	AnswerUnset YesNo = ""
	AnswerYes   YesNo = indicator.AnswerYes
	AnswerNo    YesNo = indicator.AnswerNo
)

type Injury string

const (
	InjuryUnset Injury = ""
	InjuryYes   Injury = "あり"
	InjuryNo    Injury = "なし"
)

type Side string

const (
	SideRight  Side = "右"
	SideLeft   Side = "左"
	SideBoth   Side = "両側"
	SideCenter Side = "中央"
)

type FallRiskJudgment = indicator.Judgment

const (
	JudgmentAtRisk       = indicator.JudgmentAtRisk
	JudgmentCurrentlyLow = indicator.JudgmentCurrentlyLow
	JudgmentUndetermined = indicator.JudgmentUndetermined
)

// BodyPartRecord is one pain or discomfort report from the body map.
type BodyPartRecord struct {
	ID       string `json:"id"`
	PartName string `json:"partName"`
	Side     Side   `json:"side"`
	Symptom  string `json:"symptom"`
	Level    int    `json:"level"` // 0-10
}

// PatientRecord is the full questionnaire snapshot for one session.
type PatientRecord struct {
	// Basic info
	FullName string `json:"fullName"`
	Age      string `json:"age"`
	Gender   Gender `json:"gender"`
	Height   string `json:"height"`
	Weight   string `json:"weight"`
	BMI      string `json:"bmi"`

	Concerns string `json:"concerns"`

	BodyParts BodyParts `json:"bodyParts"`

	// History and medication
	Diseases     []string `json:"diseases"`
	HistoryOther string   `json:"historyOther"`
	Medications  string   `json:"medications"`

	CheckupGeneral  CheckupAnswer `json:"checkupGeneral"`
	CheckupSpecific CheckupAnswer `json:"checkupSpecific"`

	// 3KQ fall-risk screening
	FallHistory      YesNo            `json:"fallHistory"`
	FallCount        string           `json:"fallCount"`
	FallInjury       Injury           `json:"fallInjury"`
	UnstableFeeling  YesNo            `json:"unstableFeeling"`
	FearOfFalling    YesNo            `json:"fearOfFalling"`
	FallRiskJudgment FallRiskJudgment `json:"fallRiskJudgment"`

	BPSystolic  string `json:"bpSystolic"`
	BPDiastolic string `json:"bpDiastolic"`
	BPComment   string `json:"bpComment"`
}

// NewPatientRecord returns the empty record a session starts with.
func NewPatientRecord() PatientRecord {
	return PatientRecord{
		BodyParts:        BodyParts{},
		Diseases:         []string{},
		FallRiskJudgment: indicator.JudgmentUndetermined,
	}
}

// Clone returns a deep copy so callers can read a snapshot without sharing
// slices with the wizard.
func (r PatientRecord) Clone() PatientRecord {
	c := r
	c.BodyParts = append(BodyParts{}, r.BodyParts...)
	c.Diseases = append([]string{}, r.Diseases...)
	return c
}

// BloodPressureTier classifies the record's reading.
func (r PatientRecord) BloodPressureTier() indicator.Tier {
	return indicator.ClassifyBloodPressure(r.BPSystolic, r.BPDiastolic)
}

// HasDisease reports whether label is among the selected diseases.
func (r PatientRecord) HasDisease(label string) bool {
	for _, d := range r.Diseases {
		if d == label {
			return true
		}
	}
	return false
}
