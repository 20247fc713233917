package indicator

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name   string
		height string
		weight string
		want   string
	}{
		{"typical", "160", "55", "21.5"},
		{"decimal inputs", "172.5", "68.2", "22.9"},
		{"whole number", "150", "45", "20.0"},
		{"empty height", "", "55", ""},
		{"empty weight", "160", "", ""},
		{"zero height", "0", "55", ""},
		{"negative height", "-160", "55", ""},
		{"zero weight", "160", "0", ""},
		{"non-numeric height", "abc", "55", ""},
		{"non-numeric weight", "160", "5o", ""},
		{"infinite height", "Inf", "55", ""},
		{"nan weight", "160", "NaN", ""},
		{"surrounding spaces", " 160 ", " 55 ", "21.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeBMI(tt.height, tt.weight))
		})
	}
}

func TestComputeBMI_MatchesFormula(t *testing.T) {
	for h := 100; h <= 200; h += 7 {
		for w := 30; w <= 120; w += 11 {
			m := float64(h) / 100
			exact := float64(w) / (m * m)
			got, err := strconv.ParseFloat(ComputeBMI(strconv.Itoa(h), strconv.Itoa(w)), 64)
			if assert.NoError(t, err, "h=%d w=%d", h, w) {
				assert.InDelta(t, exact, got, 0.05+1e-9, "h=%d w=%d", h, w)
				assert.Equal(t, got, math.Round(got*10)/10, "one decimal place")
			}
		}
	}
}

func TestClassifyBloodPressure(t *testing.T) {
	tests := []struct {
		sys, dia string
		want     Tier
	}{
		{"180", "70", TierCritical},
		{"110", "110", TierCritical},
		{"150", "80", TierElevated},
		{"120", "95", TierElevated},
		{"120", "70", TierNormal},
		{"abc", "80", TierNormal},
		{"190", "", TierNormal},
		{"140", "89", TierElevated},
		{"139", "90", TierElevated},
		{"139", "89", TierNormal},
		{"179", "109", TierElevated},
		{"185", "120", TierCritical},
	}

	for _, tt := range tests {
		t.Run(tt.sys+"/"+tt.dia, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBloodPressure(tt.sys, tt.dia))
		})
	}
}

func TestBloodPressureAdvice(t *testing.T) {
	assert.Equal(t, AdviceCritical, BloodPressureAdvice("185", "70"))
	assert.Equal(t, AdviceElevated, BloodPressureAdvice("145", "70"))
	assert.Equal(t, AdviceNormal, BloodPressureAdvice("118", "76"))
	assert.Equal(t, AdviceNormal, BloodPressureAdvice("x", "y"))
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "red", TierCritical.Color())
	assert.Equal(t, "yellow", TierElevated.Color())
	assert.Equal(t, "blue", TierNormal.Color())
}

func TestJudgeFallRisk(t *testing.T) {
	t.Run("any unset answer is undetermined", func(t *testing.T) {
		for _, set := range [][3]string{
			{"", AnswerYes, AnswerYes},
			{AnswerNo, "", AnswerNo},
			{AnswerYes, AnswerYes, ""},
			{"", "", ""},
			{"分からない", AnswerNo, AnswerNo},
		} {
			assert.Equal(t, JudgmentUndetermined, JudgeFallRisk(set[0], set[1], set[2]), "%v", set)
		}
	})

	t.Run("any yes is at risk", func(t *testing.T) {
		assert.Equal(t, JudgmentAtRisk, JudgeFallRisk(AnswerYes, AnswerNo, AnswerNo))
		assert.Equal(t, JudgmentAtRisk, JudgeFallRisk(AnswerNo, AnswerYes, AnswerNo))
		assert.Equal(t, JudgmentAtRisk, JudgeFallRisk(AnswerNo, AnswerNo, AnswerYes))
	})

	t.Run("all no is currently low", func(t *testing.T) {
		assert.Equal(t, JudgmentCurrentlyLow, JudgeFallRisk(AnswerNo, AnswerNo, AnswerNo))
	})
}
