package report

import (
	"strings"
	"testing"
	"time"

	"health-intake/internal/indicator"
	"health-intake/internal/intake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportTime = time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)

func sampleRecord(t *testing.T) intake.PatientRecord {
	t.Helper()
	w := intake.NewWizard()
	w.UpdateField(intake.FieldFullName, "田中花子")
	w.UpdateField(intake.FieldAge, "72")
	w.UpdateField(intake.FieldGender, "女")
	w.SetAnthropometrics("160", "55")
	w.SetBloodPressure("185", "70")
	w.SetFallScreening(intake.FallScreening{FallHistory: intake.AnswerYes, UnstableFeeling: intake.AnswerNo, FearOfFalling: intake.AnswerNo})
	for _, p := range []intake.BodyPartRecord{
		{PartName: "膝", Side: intake.SideRight, Symptom: "痛い", Level: 7},
		{PartName: "腰", Side: intake.SideCenter, Symptom: "しびれる", Level: 4},
		{PartName: "肩", Side: intake.SideLeft, Symptom: "痛い", Level: 2},
	} {
		_, err := w.AddBodyPart(p)
		require.NoError(t, err)
	}
	return w.Record()
}

func section(t *testing.T, doc Document, heading string) Section {
	t.Helper()
	for _, s := range doc.Sections {
		if s.Heading == heading {
			return s
		}
	}
	t.Fatalf("section %q not found", heading)
	return Section{}
}

func TestBuild_Header(t *testing.T) {
	doc := Build(sampleRecord(t), reportTime)
	assert.Equal(t, "田中花子 様", doc.Patient)
	assert.Equal(t, "72歳 / 女", doc.Subtitle)
	assert.Equal(t, "作成日: 2025年3月9日", doc.Date)
}

func TestBuild_BloodPressureBoxUsesTierBand(t *testing.T) {
	tests := []struct {
		sys, dia string
		tier     indicator.Tier
	}{
		{"185", "70", indicator.TierCritical},
		{"150", "80", indicator.TierElevated},
		{"120", "70", indicator.TierNormal},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			rec := sampleRecord(t)
			rec.BPSystolic, rec.BPDiastolic = tt.sys, tt.dia
			rec.BPComment = indicator.BloodPressureAdvice(tt.sys, tt.dia)

			sec := section(t, Build(rec, reportTime), "基本測定")
			require.NotNil(t, sec.Band)
			assert.Equal(t, BandFor(tt.tier), *sec.Band)
			require.Len(t, sec.Boxed, 1)
			assert.Contains(t, sec.Boxed[0].Text, tt.tier.Advice())
		})
	}
}

func TestBuild_NoBloodPressureBoxWithoutComment(t *testing.T) {
	rec := sampleRecord(t)
	rec.BPComment = ""
	sec := section(t, Build(rec, reportTime), "基本測定")
	assert.Nil(t, sec.Band)
	assert.Empty(t, sec.Boxed)
}

func TestBuild_BodyPartsInInsertionOrder(t *testing.T) {
	sec := section(t, Build(sampleRecord(t), reportTime), "痛む・気になる部位")
	require.Len(t, sec.Lines, 3)
	assert.True(t, strings.HasPrefix(sec.Lines[0].Text, "1. 右 膝"))
	assert.True(t, strings.HasPrefix(sec.Lines[1].Text, "2. 腰"))
	assert.True(t, strings.HasPrefix(sec.Lines[2].Text, "3. 左 肩"))
}

func TestBuild_EmptyRecordDefaults(t *testing.T) {
	doc := Build(intake.NewPatientRecord(), reportTime)
	assert.Equal(t, "特になし", section(t, doc, "気になること").Lines[0].Text)
	assert.Equal(t, "記録なし", section(t, doc, "痛む・気になる部位").Lines[0].Text)
	assert.Equal(t, "既往歴: なし", section(t, doc, "既往歴・服薬").Lines[0].Text)
}

func TestBuild_FallRiskHighlight(t *testing.T) {
	sec := section(t, Build(sampleRecord(t), reportTime), "転倒リスク評価")
	last := sec.Lines[len(sec.Lines)-1]
	assert.Equal(t, "判定結果: 転倒の危険がある", last.Text)
	assert.Equal(t, alert, last.Color)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "HealthCheck_田中花子_20250309_1405.pdf", FileName(sampleRecord(t), reportTime))
}

func TestFileNameFor_ReplacesPathSeparators(t *testing.T) {
	assert.Equal(t, "HealthCheck_田中_花子_20250309_1405.pdf", FileNameFor("田中/花子", reportTime))
	assert.Equal(t, "HealthCheck_a_b_c_20250309_1405.pdf", FileNameFor("a\\b\x00c", reportTime))
}
