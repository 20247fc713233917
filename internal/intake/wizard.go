package intake

import (
	"errors"
	"strings"
	"unicode/utf8"

	"health-intake/internal/indicator"
)

// Step is a questionnaire page. Steps are numbered from 1.
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepConcerns
	StepBodyMap
	StepHistory
	StepCheckup
	StepFallRisk
	StepBloodPressure
	StepReview
)

const StepCount = int(StepReview)

var stepTitles = map[Step]string{
	StepBasicInfo:     "基本情報の入力",
	StepConcerns:      "気になっていること",
	StepBodyMap:       "痛みや違和感のある部位",
	StepHistory:       "病歴・服薬",
	StepCheckup:       "健診の受診状況",
	StepFallRisk:      "転倒リスクチェック",
	StepBloodPressure: "血圧",
	StepReview:        "入力内容の確認",
}

func (s Step) Title() string { return stepTitles[s] }

func (s Step) Valid() bool { return s >= StepBasicInfo && s <= StepReview }

var ErrUnknownZone = errors.New("unknown body map zone")

// Field names a single scalar PatientRecord field. The names match the
// submission envelope keys.
type Field string

const (
	FieldFullName        Field = "fullName"
	FieldAge             Field = "age"
	FieldGender          Field = "gender"
	FieldHeight          Field = "height"
	FieldWeight          Field = "weight"
	FieldConcerns        Field = "concerns"
	FieldHistoryOther    Field = "historyOther"
	FieldMedications     Field = "medications"
	FieldCheckupGeneral  Field = "checkupGeneral"
	FieldCheckupSpecific Field = "checkupSpecific"
	FieldFallHistory     Field = "fallHistory"
	FieldFallCount       Field = "fallCount"
	FieldFallInjury      Field = "fallInjury"
	FieldUnstableFeeling Field = "unstableFeeling"
	FieldFearOfFalling   Field = "fearOfFalling"
	FieldBPSystolic      Field = "bpSystolic"
	FieldBPDiastolic     Field = "bpDiastolic"
)

type Identity struct {
	FullName string
	Age      string
	Gender   Gender
}

type History struct {
	Diseases    []string
	Other       string
	Medications string
}

type FallScreening struct {
	FallHistory     YesNo
	UnstableFeeling YesNo
	FearOfFalling   YesNo
}

// Wizard owns one PatientRecord and walks it through the questionnaire steps.
// Mutations are accepted or refused; refusals leave the state untouched and
// are reported as false rather than as errors. Derived fields are refreshed
// before every mutating call returns.
//
// A Wizard is not safe for concurrent use.
type Wizard struct {
	step   Step
	record PatientRecord
}

func NewWizard() *Wizard {
	w := &Wizard{}
	w.Reset()
	return w
}

// RestoreWizard rebuilds a wizard from a persisted snapshot.
func RestoreWizard(step Step, record PatientRecord) *Wizard {
	if !step.Valid() {
		step = StepBasicInfo
	}
	if record.BodyParts == nil {
		record.BodyParts = BodyParts{}
	}
	if record.Diseases == nil {
		record.Diseases = []string{}
	}
	w := &Wizard{step: step, record: record}
	w.derive()
	return w
}

func (w *Wizard) Step() Step { return w.step }

// Record returns a copy of the current record.
func (w *Wizard) Record() PatientRecord { return w.record.Clone() }

// StepValid is the gating predicate for leaving step forward.
func StepValid(step Step, r PatientRecord) bool {
	switch step {
	case StepBasicInfo:
		return strings.TrimSpace(r.FullName) != ""
	case StepFallRisk:
		return r.FallHistory != AnswerUnset &&
			r.UnstableFeeling != AnswerUnset &&
			r.FearOfFalling != AnswerUnset
	default:
		return true
	}
}

func (w *Wizard) CanAdvance() bool {
	return w.step < StepReview && StepValid(w.step, w.record)
}

// Advance moves to the next step. A true result also tells the presentation
// layer to scroll back to the top of the page.
func (w *Wizard) Advance() bool {
	if !w.CanAdvance() {
		return false
	}
	w.step++
	return true
}

func (w *Wizard) Retreat() bool {
	if w.step <= StepBasicInfo {
		return false
	}
	w.step--
	return true
}

// Reset discards the record and returns to the first step.
func (w *Wizard) Reset() {
	w.step = StepBasicInfo
	w.record = NewPatientRecord()
}

// SetIdentity refuses an unknown gender or an age that is not a non-negative
// whole number. An empty age is allowed.
func (w *Wizard) SetIdentity(id Identity) bool {
	if !isGender(id.Gender) || !ValidAge(id.Age) {
		return false
	}
	w.record.FullName = id.FullName
	w.record.Age = id.Age
	w.record.Gender = id.Gender
	w.derive()
	return true
}

func (w *Wizard) SetAnthropometrics(height, weight string) {
	w.record.Height = height
	w.record.Weight = weight
	w.derive()
}

// SetConcerns stores the free text, cut to ConcernsMaxLength characters.
func (w *Wizard) SetConcerns(text string) {
	w.record.Concerns = truncate(text, ConcernsMaxLength)
}

func (w *Wizard) AddBodyPart(e BodyPartRecord) (BodyPartRecord, error) {
	return w.record.BodyParts.Add(e)
}

// AddBodyPartFromZone adds an entry seeded with the zone's label and default
// side.
func (w *Wizard) AddBodyPartFromZone(zoneID, symptom string, level int) (BodyPartRecord, error) {
	z, ok := FindZone(zoneID)
	if !ok {
		return BodyPartRecord{}, ErrUnknownZone
	}
	return w.AddBodyPart(BodyPartRecord{
		PartName: z.Label,
		Side:     z.DefaultSide,
		Symptom:  symptom,
		Level:    level,
	})
}

func (w *Wizard) RemoveBodyPart(id string) bool {
	return w.record.BodyParts.Remove(id)
}

// SetHistory replaces the disease selection and free-text history. Labels
// outside the catalog refuse the whole update; duplicates are dropped.
func (w *Wizard) SetHistory(h History) bool {
	diseases := make([]string, 0, len(h.Diseases))
	for _, d := range h.Diseases {
		if !isDisease(d) {
			return false
		}
		if !contains(diseases, d) {
			diseases = append(diseases, d)
		}
	}
	w.record.Diseases = diseases
	w.record.HistoryOther = h.Other
	w.record.Medications = h.Medications
	return true
}

// ToggleDisease selects or deselects one catalog label.
func (w *Wizard) ToggleDisease(label string) bool {
	if !isDisease(label) {
		return false
	}
	for i, d := range w.record.Diseases {
		if d == label {
			w.record.Diseases = append(w.record.Diseases[:i:i], w.record.Diseases[i+1:]...)
			return true
		}
	}
	w.record.Diseases = append(w.record.Diseases, label)
	return true
}

func (w *Wizard) SetCheckups(general, specific CheckupAnswer) bool {
	if !isCheckup(general) || !isCheckup(specific) {
		return false
	}
	w.record.CheckupGeneral = general
	w.record.CheckupSpecific = specific
	return true
}

// SetFallScreening stores the three 3KQ answers. Answering anything but yes to
// the fall-history question clears the fall details.
func (w *Wizard) SetFallScreening(s FallScreening) bool {
	if !isYesNo(s.FallHistory) || !isYesNo(s.UnstableFeeling) || !isYesNo(s.FearOfFalling) {
		return false
	}
	w.record.FallHistory = s.FallHistory
	w.record.UnstableFeeling = s.UnstableFeeling
	w.record.FearOfFalling = s.FearOfFalling
	w.derive()
	return true
}

// SetFallDetails records how often the patient fell and whether they were
// hurt. The details only exist while the fall-history answer is yes.
func (w *Wizard) SetFallDetails(count string, injury Injury) bool {
	if w.record.FallHistory != AnswerYes || !isInjury(injury) {
		return false
	}
	w.record.FallCount = count
	w.record.FallInjury = injury
	return true
}

func (w *Wizard) SetBloodPressure(systolic, diastolic string) {
	w.record.BPSystolic = systolic
	w.record.BPDiastolic = diastolic
	w.derive()
}

// UpdateField applies a single scalar field change through the matching group
// update. Derived fields cannot be written.
func (w *Wizard) UpdateField(field Field, value string) bool {
	r := w.record
	switch field {
	case FieldFullName:
		return w.SetIdentity(Identity{FullName: value, Age: r.Age, Gender: r.Gender})
	case FieldAge:
		return w.SetIdentity(Identity{FullName: r.FullName, Age: value, Gender: r.Gender})
	case FieldGender:
		return w.SetIdentity(Identity{FullName: r.FullName, Age: r.Age, Gender: Gender(value)})
	case FieldHeight:
		w.SetAnthropometrics(value, r.Weight)
	case FieldWeight:
		w.SetAnthropometrics(r.Height, value)
	case FieldConcerns:
		w.SetConcerns(value)
	case FieldHistoryOther:
		return w.SetHistory(History{Diseases: r.Diseases, Other: value, Medications: r.Medications})
	case FieldMedications:
		return w.SetHistory(History{Diseases: r.Diseases, Other: r.HistoryOther, Medications: value})
	case FieldCheckupGeneral:
		return w.SetCheckups(CheckupAnswer(value), r.CheckupSpecific)
	case FieldCheckupSpecific:
		return w.SetCheckups(r.CheckupGeneral, CheckupAnswer(value))
	case FieldFallHistory:
		return w.SetFallScreening(FallScreening{YesNo(value), r.UnstableFeeling, r.FearOfFalling})
	case FieldUnstableFeeling:
		return w.SetFallScreening(FallScreening{r.FallHistory, YesNo(value), r.FearOfFalling})
	case FieldFearOfFalling:
		return w.SetFallScreening(FallScreening{r.FallHistory, r.UnstableFeeling, YesNo(value)})
	case FieldFallCount:
		return w.SetFallDetails(value, r.FallInjury)
	case FieldFallInjury:
		return w.SetFallDetails(r.FallCount, Injury(value))
	case FieldBPSystolic:
		w.SetBloodPressure(value, r.BPDiastolic)
	case FieldBPDiastolic:
		w.SetBloodPressure(r.BPSystolic, value)
	default:
		return false
	}
	return true
}

func (w *Wizard) derive() {
	r := &w.record
	r.BMI = indicator.ComputeBMI(r.Height, r.Weight)
	r.FallRiskJudgment = indicator.JudgeFallRisk(string(r.FallHistory), string(r.UnstableFeeling), string(r.FearOfFalling))
	if r.FallHistory != AnswerYes {
		r.FallCount = ""
		r.FallInjury = InjuryUnset
	}
	if r.BPSystolic != "" && r.BPDiastolic != "" {
		r.BPComment = indicator.BloodPressureAdvice(r.BPSystolic, r.BPDiastolic)
	} else {
		r.BPComment = ""
	}
}

// ValidAge reports whether age is empty or made of ASCII digits only.
func ValidAge(age string) bool {
	for _, c := range age {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
