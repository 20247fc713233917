package report

import (
	"fmt"
	"strings"
	"time"

	"health-intake/internal/indicator"
	"health-intake/internal/intake"
)

type RGB struct{ R, G, B uint8 }

var (
	black = RGB{15, 23, 42}
	muted = RGB{100, 116, 139}
	alert = RGB{220, 38, 38}
)

// Band is the fill, border and text colour of a tier-styled box.
type Band struct {
	Fill, Border, Text RGB
}

var bands = map[string]Band{
	"red":    {Fill: RGB{254, 242, 242}, Border: RGB{239, 68, 68}, Text: RGB{127, 29, 29}},
	"yellow": {Fill: RGB{254, 252, 232}, Border: RGB{234, 179, 8}, Text: RGB{113, 63, 18}},
	"blue":   {Fill: RGB{239, 246, 255}, Border: RGB{59, 130, 246}, Text: RGB{30, 58, 138}},
}

// BandFor returns the colours the blood-pressure box is drawn with.
func BandFor(t indicator.Tier) Band {
	return bands[t.Color()]
}

type Line struct {
	Text  string
	Color RGB
	Size  float64
}

type Section struct {
	Heading string
	Lines   []Line
	// Boxed lines are drawn inside a tier-coloured box below Lines.
	Boxed []Line
	Band  *Band
}

// Document is the laid-out report before it is drawn.
type Document struct {
	Title    string
	Date     string
	Patient  string
	Subtitle string
	Sections []Section
	Footer   string
}

const (
	sizeBody  = 11
	sizeLarge = 14
	sizeSmall = 9
)

func text(s string) Line  { return Line{Text: s, Color: black, Size: sizeBody} }
func small(s string) Line { return Line{Text: s, Color: muted, Size: sizeSmall} }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Build lays out the report for record. Body-pain entries keep their
// insertion order and the blood-pressure box uses the tier's band.
func Build(r intake.PatientRecord, now time.Time) Document {
	doc := Document{
		Title:    "健康チェック結果レポート",
		Date:     "作成日: " + now.Format("2006年1月2日"),
		Patient:  r.FullName + " 様",
		Subtitle: fmt.Sprintf("%s歳 / %s", r.Age, r.Gender),
		Footer:   "HealthCheck Pro Report System",
	}

	tier := r.BloodPressureTier()
	bp := Section{
		Heading: "基本測定",
		Lines: []Line{
			{Text: fmt.Sprintf("体格: %scm / %skg (BMI: %s)", r.Height, r.Weight, r.BMI), Color: black, Size: sizeLarge},
			{Text: fmt.Sprintf("血圧: %s / %s mmHg", r.BPSystolic, r.BPDiastolic), Color: pressureColor(r), Size: sizeLarge},
		},
	}
	if r.BPComment != "" {
		band := BandFor(tier)
		bp.Band = &band
		bp.Boxed = []Line{{Text: "【判定結果】 " + r.BPComment, Color: band.Text, Size: sizeBody}}
	}
	bp.Lines = append(bp.Lines,
		small("正常: 上140未満 かつ 下90未満"),
		small("注意: 上140~179 または 下90~109"),
		small("高度: 上180以上 または 下110以上"),
	)
	doc.Sections = append(doc.Sections, bp)

	doc.Sections = append(doc.Sections, Section{
		Heading: "気になること",
		Lines:   []Line{text(orDefault(r.Concerns, "特になし"))},
	})

	parts := Section{Heading: "痛む・気になる部位"}
	if len(r.BodyParts) == 0 {
		parts.Lines = []Line{small("記録なし")}
	}
	for i, p := range r.BodyParts {
		side := string(p.Side) + " "
		if p.Side == intake.SideCenter {
			side = ""
		}
		parts.Lines = append(parts.Lines, text(fmt.Sprintf("%d. %s%s  %s  強さ %d/10", i+1, side, p.PartName, p.Symptom, p.Level)))
	}
	doc.Sections = append(doc.Sections, parts)

	history := orDefault(strings.Join(r.Diseases, ", "), "なし")
	if r.HistoryOther != "" {
		history += fmt.Sprintf(" (%s)", r.HistoryOther)
	}
	doc.Sections = append(doc.Sections, Section{
		Heading: "既往歴・服薬",
		Lines: []Line{
			text("既往歴: " + history),
			text("服薬: " + orDefault(r.Medications, "なし")),
		},
	})

	doc.Sections = append(doc.Sections, Section{
		Heading: "健診受診状況",
		Lines: []Line{
			text(fmt.Sprintf("一般健診: %s", r.CheckupGeneral)),
			text(fmt.Sprintf("特定健診: %s", r.CheckupSpecific)),
		},
	})

	fall := fmt.Sprintf("1. 過去1年の転倒: %s", r.FallHistory)
	if r.FallHistory == intake.AnswerYes {
		fall += fmt.Sprintf(" (%s, 怪我%s)", r.FallCount, r.FallInjury)
	}
	judgment := Line{Text: "判定結果: " + string(r.FallRiskJudgment), Color: black, Size: sizeLarge}
	if r.FallRiskJudgment == intake.JudgmentAtRisk {
		judgment.Color = alert
	}
	doc.Sections = append(doc.Sections, Section{
		Heading: "転倒リスク評価",
		Lines: []Line{
			text(fall),
			text(fmt.Sprintf("2. 不安定感: %s", r.UnstableFeeling)),
			text(fmt.Sprintf("3. 転倒恐怖: %s", r.FearOfFalling)),
			judgment,
		},
	})

	return doc
}

// pressureColor highlights a reading at or above 140/90.
func pressureColor(r intake.PatientRecord) RGB {
	if r.BloodPressureTier() != indicator.TierNormal {
		return alert
	}
	return black
}

// FileName is the stored name of a submitted report.
func FileName(r intake.PatientRecord, now time.Time) string {
	return FileNameFor(r.FullName, now)
}

// FileNameFor builds HealthCheck_{name}_{yyyyMMdd_HHmm}.pdf. Path separators
// and NUL in the name become underscores.
func FileNameFor(fullName string, at time.Time) string {
	return fmt.Sprintf("HealthCheck_%s_%s.pdf", fileNameReplacer.Replace(fullName), at.Format("20060102_1504"))
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")
