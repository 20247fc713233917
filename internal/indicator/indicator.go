// Package indicator computes the derived health indicators shown on the
// questionnaire: BMI, the blood-pressure tier with its advisory text, and the
// three-question fall-risk judgment. Every function here is pure and never
// fails; unusable input degrades to a fixed default.
package indicator

import (
	"math"
	"strconv"
	"strings"
)

// Screening answers accepted by JudgeFallRisk.
const (
	AnswerYes = "はい"
	AnswerNo  = "いいえ"
)

// Judgment is the outcome of the fall-risk screening.
type Judgment string

const (
	JudgmentAtRisk       Judgment = "転倒の危険がある"
	JudgmentCurrentlyLow Judgment = "今は低い"
	JudgmentUndetermined Judgment = "未判定"
)

// Tier is a blood-pressure classification band.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierElevated Tier = "elevated"
	TierCritical Tier = "critical"
)

// Tier lower bounds. Both are inclusive.
const (
	criticalSystolic  = 180
	criticalDiastolic = 110
	elevatedSystolic  = 140
	elevatedDiastolic = 90
)

const (
	AdviceCritical = "【重要】血圧の値がかなり高い範囲に入っています。体調が安定していても、できるだけ早く医療機関（かかりつけ医など）にご相談されることを強くおすすめします。"
	AdviceElevated = "血圧がやや高めの範囲です。次回の健診や、かかりつけ医で一度ご相談されることをおすすめします。"
	AdviceNormal   = "血圧の値は大きな問題はなさそうです。今後も定期的な健診で様子を見ていきましょう。"
)

// ComputeBMI returns weight / (height in metres)^2 formatted with one decimal
// place, or "" when either value is missing, non-numeric or not positive.
func ComputeBMI(heightCm, weightKg string) string {
	h, ok := parsePositive(heightCm)
	if !ok {
		return ""
	}
	w, ok := parsePositive(weightKg)
	if !ok {
		return ""
	}
	m := h / 100
	return strconv.FormatFloat(w/(m*m), 'f', 1, 64)
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// ClassifyBloodPressure places a reading into a tier. The critical band is
// checked before the elevated band; either pressure alone is enough to enter a
// band.
//
// An unparseable reading is classified as TierNormal. This mirrors the
// questionnaire as deployed and hides bad input rather than flagging it; do not
// change it without product sign-off.
func ClassifyBloodPressure(systolic, diastolic string) Tier {
	sys, err := strconv.Atoi(strings.TrimSpace(systolic))
	if err != nil {
		return TierNormal
	}
	dia, err := strconv.Atoi(strings.TrimSpace(diastolic))
	if err != nil {
		return TierNormal
	}

	switch {
	case sys >= criticalSystolic || dia >= criticalDiastolic:
		return TierCritical
	case sys >= elevatedSystolic || dia >= elevatedDiastolic:
		return TierElevated
	default:
		return TierNormal
	}
}

// BloodPressureAdvice returns the advisory message for the reading's tier.
func BloodPressureAdvice(systolic, diastolic string) string {
	return ClassifyBloodPressure(systolic, diastolic).Advice()
}

// Advice is the fixed advisory message for the tier.
func (t Tier) Advice() string {
	switch t {
	case TierCritical:
		return AdviceCritical
	case TierElevated:
		return AdviceElevated
	default:
		return AdviceNormal
	}
}

// Color is the styling band used when the tier is drawn: red, yellow or blue.
func (t Tier) Color() string {
	switch t {
	case TierCritical:
		return "red"
	case TierElevated:
		return "yellow"
	default:
		return "blue"
	}
}

// JudgeFallRisk evaluates the 3KQ screening. Until all three questions carry a
// valid answer the result is JudgmentUndetermined.
func JudgeFallRisk(fallHistory, unstableFeeling, fearOfFalling string) Judgment {
	answers := [...]string{fallHistory, unstableFeeling, fearOfFalling}
	for _, a := range answers {
		if !validAnswer(a) {
			return JudgmentUndetermined
		}
	}
	for _, a := range answers {
		if a == AnswerYes {
			return JudgmentAtRisk
		}
	}
	return JudgmentCurrentlyLow
}

func validAnswer(a string) bool {
	return a == AnswerYes || a == AnswerNo
}
