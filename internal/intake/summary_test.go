package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyPartsSummary(t *testing.T) {
	rec := NewPatientRecord()
	_, err := rec.BodyParts.Add(BodyPartRecord{PartName: "膝", Side: SideRight, Symptom: "痛い", Level: 7})
	require.NoError(t, err)
	_, err = rec.BodyParts.Add(BodyPartRecord{PartName: "腰", Side: SideCenter, Symptom: "しびれる", Level: 4})
	require.NoError(t, err)
	_, err = rec.BodyParts.Add(BodyPartRecord{PartName: "肩", Side: SideBoth, Symptom: "感覚がにぶい", Level: 0})
	require.NoError(t, err)

	assert.Equal(t, "右膝（痛い：7/10）／腰（しびれる：4/10）／両側肩（感覚がにぶい：0/10）", rec.BodyPartsSummary())
}

func TestBodyPartsSummary_Empty(t *testing.T) {
	assert.Equal(t, "", NewPatientRecord().BodyPartsSummary())
}

func TestDiseasesString(t *testing.T) {
	rec := NewPatientRecord()
	rec.Diseases = []string{"高血圧", "糖尿病", DiseaseOther}
	assert.Equal(t, "高血圧,糖尿病,その他", rec.DiseasesString())
}

func TestReview(t *testing.T) {
	w := NewWizard()
	w.UpdateField(FieldFullName, "田中花子")
	w.SetHistory(History{Diseases: []string{"高血圧"}, Other: "緑内障"})
	w.SetFallScreening(FallScreening{AnswerYes, AnswerNo, AnswerNo})

	lines := w.Record().Review()
	byLabel := map[string]ReviewLine{}
	for _, l := range lines {
		byLabel[l.Label] = l
	}

	assert.Equal(t, "田中花子", byLabel["氏名"].Value)
	assert.Equal(t, "なし", byLabel["部位"].Value)
	assert.Equal(t, "高血圧 (緑内障)", byLabel["病歴"].Value)
	assert.True(t, byLabel["転倒リスク"].Highlight)
}
