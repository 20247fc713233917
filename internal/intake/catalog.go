package intake

// DiseaseOther reveals the free-text history field when selected.
const DiseaseOther = "その他"

// ConcernsMaxLength is the character limit of the free-text concerns field.
const ConcernsMaxLength = 200

var DiseaseOptions = []string{
	"高血圧",
	"糖尿病",
	"脂質異常症",
	"心臓の病気",
	"脳の病気",
	"骨粗しょう症",
	"関節の病気",
	"呼吸器の病気",
	"腎臓の病気",
	DiseaseOther,
}

var SymptomOptions = []string{
	"痛い",
	"しびれる",
	"感覚がにぶい",
}

var SideOptions = []Side{SideRight, SideLeft, SideBoth, SideCenter}

var GenderOptions = []Gender{GenderMale, GenderFemale, GenderNoAnswer}

var CheckupOptions = []CheckupAnswer{CheckupYes, CheckupNo, CheckupUnknown}

var InjuryOptions = []Injury{InjuryYes, InjuryNo}

var YesNoOptions = []YesNo{AnswerYes, AnswerNo}

// Zone is a selectable region of the body map.
type Zone struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	DefaultSide Side   `json:"defaultSide"`
}

var BodyZones = []Zone{
	{ID: "head", Label: "頭", DefaultSide: SideCenter},
	{ID: "neck", Label: "首", DefaultSide: SideCenter},
	{ID: "r_shoulder", Label: "肩", DefaultSide: SideRight},
	{ID: "l_shoulder", Label: "肩", DefaultSide: SideLeft},
	{ID: "chest", Label: "胸・背中", DefaultSide: SideCenter},
	{ID: "r_elbow", Label: "肘", DefaultSide: SideRight},
	{ID: "l_elbow", Label: "肘", DefaultSide: SideLeft},
	{ID: "r_hand", Label: "手首・手", DefaultSide: SideRight},
	{ID: "l_hand", Label: "手首・手", DefaultSide: SideLeft},
	{ID: "waist", Label: "腰", DefaultSide: SideCenter},
	{ID: "r_hip", Label: "股関節", DefaultSide: SideRight},
	{ID: "l_hip", Label: "股関節", DefaultSide: SideLeft},
	{ID: "r_knee", Label: "膝", DefaultSide: SideRight},
	{ID: "l_knee", Label: "膝", DefaultSide: SideLeft},
	{ID: "r_foot", Label: "足首・足", DefaultSide: SideRight},
	{ID: "l_foot", Label: "足首・足", DefaultSide: SideLeft},
}

// FindZone looks a body-map zone up by id.
func FindZone(id string) (Zone, bool) {
	for _, z := range BodyZones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

func isDisease(label string) bool { return contains(DiseaseOptions, label) }
func isSymptom(label string) bool { return contains(SymptomOptions, label) }
func isSide(s Side) bool { return contains(SideOptions, s) }
func isGender(g Gender) bool { return g == GenderUnset || contains(GenderOptions, g) }
func isCheckup(c CheckupAnswer) bool { return c == CheckupUnset || contains(CheckupOptions, c) }
func isInjury(i Injury) bool { return i == InjuryUnset || contains(InjuryOptions, i) }
func isYesNo(a YesNo) bool { return a == AnswerUnset || contains(YesNoOptions, a) }

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
