package submission

import (
	"health-intake/internal/intake"
)

// Envelope is the flattened payload posted to the storage endpoint. Field
// order matches the spreadsheet columns on the receiving side.
type Envelope struct {
	FullName         string `json:"fullName"`
	Age              string `json:"age"`
	Gender           string `json:"gender"`
	Height           string `json:"height"`
	Weight           string `json:"weight"`
	BMI              string `json:"bmi"`
	Concerns         string `json:"concerns"`
	BodyPartsSummary string `json:"bodyPartsSummary"`
	DiseasesStr      string `json:"diseasesStr"`
	HistoryOther     string `json:"historyOther"`
	Medications      string `json:"medications"`
	CheckupGeneral   string `json:"checkupGeneral"`
	CheckupSpecific  string `json:"checkupSpecific"`
	FallHistory      string `json:"fallHistory"`
	FallCount        string `json:"fallCount"`
	FallInjury       string `json:"fallInjury"`
	UnstableFeeling  string `json:"unstableFeeling"`
	FearOfFalling    string `json:"fearOfFalling"`
	FallRiskJudgment string `json:"fallRiskJudgment"`
	BPSystolic       string `json:"bpSystolic"`
	BPDiastolic      string `json:"bpDiastolic"`
	BPComment        string `json:"bpComment"`
	PDFFile          string `json:"pdfFile"`
}

// BuildEnvelope flattens r and attaches the base64-encoded report.
func BuildEnvelope(r intake.PatientRecord, pdfBase64 string) Envelope {
	return Envelope{
		FullName:         r.FullName,
		Age:              r.Age,
		Gender:           string(r.Gender),
		Height:           r.Height,
		Weight:           r.Weight,
		BMI:              r.BMI,
		Concerns:         r.Concerns,
		BodyPartsSummary: r.BodyPartsSummary(),
		DiseasesStr:      r.DiseasesString(),
		HistoryOther:     r.HistoryOther,
		Medications:      r.Medications,
		CheckupGeneral:   string(r.CheckupGeneral),
		CheckupSpecific:  string(r.CheckupSpecific),
		FallHistory:      string(r.FallHistory),
		FallCount:        r.FallCount,
		FallInjury:       string(r.FallInjury),
		UnstableFeeling:  string(r.UnstableFeeling),
		FearOfFalling:    string(r.FearOfFalling),
		FallRiskJudgment: string(r.FallRiskJudgment),
		BPSystolic:       r.BPSystolic,
		BPDiastolic:      r.BPDiastolic,
		BPComment:        r.BPComment,
		PDFFile:          pdfBase64,
	}
}

// Row returns the 22 record columns of the envelope, without the document.
func (e Envelope) Row() []string {
	return []string{
		e.FullName, e.Age, e.Gender, e.Height, e.Weight, e.BMI, e.Concerns,
		e.BodyPartsSummary, e.DiseasesStr, e.HistoryOther, e.Medications,
		e.CheckupGeneral, e.CheckupSpecific,
		e.FallHistory, e.FallCount, e.FallInjury, e.UnstableFeeling, e.FearOfFalling, e.FallRiskJudgment,
		e.BPSystolic, e.BPDiastolic, e.BPComment,
	}
}
