package intake

import (
	"fmt"
	"strings"
)

// Label renders the entry as {side}{part}（{symptom}：{level}/10）. The side is
// omitted for centre-line parts.
func (e BodyPartRecord) Label() string {
	side := string(e.Side)
	if e.Side == SideCenter {
		side = ""
	}
	return fmt.Sprintf("%s%s（%s：%d/10）", side, e.PartName, e.Symptom, e.Level)
}

// Summary joins entry labels with sep in insertion order.
func (b BodyParts) Summary(sep string) string {
	labels := make([]string, len(b))
	for i, e := range b {
		labels[i] = e.Label()
	}
	return strings.Join(labels, sep)
}

// BodyPartsSummary is the flattened body-map column of the submission.
func (r PatientRecord) BodyPartsSummary() string {
	return r.BodyParts.Summary("／")
}

// DiseasesString is the flattened disease column of the submission.
func (r PatientRecord) DiseasesString() string {
	return strings.Join(r.Diseases, ",")
}

// ReviewLine is one row of the confirmation page.
type ReviewLine struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Review builds the confirmation page shown on the last step.
func (r PatientRecord) Review() []ReviewLine {
	parts := "なし"
	if len(r.BodyParts) > 0 {
		parts = r.BodyParts.Summary("、")
	}
	history := strings.Join(r.Diseases, ", ")
	if r.HistoryOther != "" {
		history += fmt.Sprintf(" (%s)", r.HistoryOther)
	}

	return []ReviewLine{
		{Label: "氏名", Value: r.FullName},
		{Label: "年齢 / 性別", Value: fmt.Sprintf("%s歳 / %s", r.Age, r.Gender)},
		{Label: "体格", Value: fmt.Sprintf("身長:%scm / 体重:%skg / BMI:%s", r.Height, r.Weight, r.BMI)},
		{Label: "血圧", Value: fmt.Sprintf("上:%s / 下:%s", r.BPSystolic, r.BPDiastolic)},
		{Label: "気になること", Value: r.Concerns},
		{Label: "部位", Value: parts},
		{Label: "病歴", Value: history},
		{Label: "健診", Value: fmt.Sprintf("一般:%s / 特定:%s", r.CheckupGeneral, r.CheckupSpecific)},
		{Label: "転倒リスク", Value: string(r.FallRiskJudgment), Highlight: r.FallRiskJudgment == JudgmentAtRisk},
	}
}
