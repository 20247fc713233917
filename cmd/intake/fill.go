package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"health-intake/internal/config"
	"health-intake/internal/intake"
	"health-intake/internal/platform/storage"
	"health-intake/internal/report"
	"health-intake/internal/submission"
)

func fillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in the questionnaire interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			saveRecord, _ := cmd.Flags().GetString("save-record")
			savePDF, _ := cmd.Flags().GetString("save-pdf")
			endpoint, _ := cmd.Flags().GetString("endpoint")
			font, _ := cmd.Flags().GetString("font")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if endpoint == "" {
				endpoint = cfg.StorageEndpointURL
			}
			if font == "" {
				font = cfg.ReportFontPath
			}

			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			out := cmd.OutOrStdout()
			w := intake.NewWizard()
			if err := runWizard(w, out); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(out, "中断しました")
					return nil
				}
				return err
			}
			rec := w.Record()

			if saveRecord != "" {
				if err := writeRecord(saveRecord, rec); err != nil {
					return err
				}
			}

			renderer := report.NewRenderer(font, log)
			if savePDF != "" {
				pdf, err := renderer.Render(cmd.Context(), rec)
				if err != nil {
					return err
				}
				if err := os.WriteFile(savePDF, pdf, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			if endpoint == "" {
				fmt.Fprintln(out, "送信先が設定されていないため送信しません (--endpoint)")
				return nil
			}
			send := true
			if err := huh.NewConfirm().
				Title("この内容で送信しますか？").
				Affirmative("送信する").
				Negative("やめる").
				Value(&send).
				Run(); err != nil {
				return err
			}
			if !send {
				return nil
			}

			coord := submission.NewCoordinator(renderer, storage.NewClient(endpoint, cfg.StorageTimeout, log), log)
			return submitRecord(cmd.Context(), coord, rec, out)
		},
	}
	cmd.Flags().String("save-record", "", "write the finished record as JSON")
	cmd.Flags().String("save-pdf", "", "write the PDF report locally")
	cmd.Flags().String("endpoint", "", "storage endpoint URL (defaults to STORAGE_ENDPOINT_URL)")
	cmd.Flags().String("font", "", "Japanese TrueType font to embed")
	return cmd
}

// submitRecord runs one submission and prints the progress labels as they
// arrive.
func submitRecord(ctx context.Context, coord *submission.Coordinator, rec intake.PatientRecord, out io.Writer) error {
	coord.OnProgress = func(label string) {
		fmt.Fprintln(out, label)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	receipt, err := coord.Submit(ctx, rec)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(coord.Status().Message))
		return err
	}
	fmt.Fprintln(out, successStyle.Render("送信が完了しました"))
	if receipt.FileURL != "" {
		fmt.Fprintln(out, labelStyle.Render("PDF")+receipt.FileURL)
	}
	return nil
}

const (
	navNext = "next"
	navBack = "back"
)

// runWizard walks every step with one form each. After each step the user
// moves on or goes back; a step whose gate refuses is asked again.
func runWizard(w *intake.Wizard, out io.Writer) error {
	for {
		step := w.Step()
		fmt.Fprintln(out, stepHeader(step))
		if step == intake.StepReview {
			fmt.Fprintln(out, renderReview(w.Record()))
		} else if err := askStep(w, step); err != nil {
			return err
		}

		choice, err := askNavigation(step)
		if err != nil {
			return err
		}
		if navigate(w, choice, out) {
			return nil
		}
	}
}

func askNavigation(step intake.Step) (string, error) {
	if step == intake.StepBasicInfo {
		return navNext, nil
	}
	next := "次へ"
	if step == intake.StepReview {
		next = "この内容で確定"
	}
	choice := navNext
	err := huh.NewSelect[string]().
		Options(huh.NewOption(next, navNext), huh.NewOption("戻る", navBack)).
		Value(&choice).
		Run()
	return choice, err
}

// navigate applies a navigation choice and reports whether the review step
// was confirmed.
func navigate(w *intake.Wizard, choice string, out io.Writer) bool {
	if choice == navBack {
		w.Retreat()
		return false
	}
	if w.Step() == intake.StepReview {
		return true
	}
	if !w.Advance() {
		fmt.Fprintln(out, errorStyle.Render("未入力の項目があります"))
	}
	return false
}

func askStep(w *intake.Wizard, step intake.Step) error {
	switch step {
	case intake.StepBasicInfo:
		return askBasicInfo(w)
	case intake.StepConcerns:
		return askConcerns(w)
	case intake.StepBodyMap:
		return askBodyParts(w)
	case intake.StepHistory:
		return askHistory(w)
	case intake.StepCheckup:
		return askCheckups(w)
	case intake.StepFallRisk:
		return askFallRisk(w)
	case intake.StepBloodPressure:
		return askBloodPressure(w)
	}
	return nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("入力してください")
	}
	return nil
}

func askBasicInfo(w *intake.Wizard) error {
	r := w.Record()
	name, age, gender := r.FullName, r.Age, string(r.Gender)
	height, weight := r.Height, r.Weight

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("お名前").Value(&name).Validate(required),
		huh.NewInput().Title("年齢").Value(&age).Validate(func(s string) error {
			if !intake.ValidAge(s) {
				return errors.New("数字で入力してください")
			}
			return nil
		}),
		huh.NewSelect[string]().Title("性別").
			Options(stringOptions(intake.GenderOptions)...).
			Value(&gender),
		huh.NewInput().Title("身長 (cm)").Value(&height),
		huh.NewInput().Title("体重 (kg)").Value(&weight),
	)).Run()
	if err != nil {
		return err
	}

	w.SetIdentity(intake.Identity{FullName: name, Age: age, Gender: intake.Gender(gender)})
	w.SetAnthropometrics(height, weight)
	return nil
}

func askConcerns(w *intake.Wizard) error {
	text := w.Record().Concerns
	err := huh.NewText().
		Title("気になっていること").
		Description(fmt.Sprintf("%d文字まで", intake.ConcernsMaxLength)).
		CharLimit(intake.ConcernsMaxLength).
		Value(&text).
		Run()
	if err != nil {
		return err
	}
	w.SetConcerns(text)
	return nil
}

func askBodyParts(w *intake.Wizard) error {
	for !w.Record().BodyParts.Full() {
		more := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("痛みや違和感のある部位を追加しますか？ (%d/%d)", len(w.Record().BodyParts), intake.MaxBodyParts)).
			Affirmative("追加する").
			Negative("次へ").
			Value(&more).
			Run(); err != nil {
			return err
		}
		if !more {
			return nil
		}

		var zoneID, symptom string
		level := 5
		zones := make([]huh.Option[string], 0, len(intake.BodyZones))
		for _, z := range intake.BodyZones {
			label := z.Label
			if z.DefaultSide != intake.SideCenter {
				label = string(z.DefaultSide) + z.Label
			}
			zones = append(zones, huh.NewOption(label, z.ID))
		}
		levels := make([]huh.Option[int], 0, 11)
		for i := 0; i <= 10; i++ {
			levels = append(levels, huh.NewOption(fmt.Sprintf("%d/10", i), i))
		}

		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("部位").Options(zones...).Value(&zoneID),
			huh.NewSelect[string]().Title("症状").Options(huh.NewOptions(intake.SymptomOptions...)...).Value(&symptom),
			huh.NewSelect[int]().Title("つらさ (0-10)").Options(levels...).Value(&level),
		)).Run()
		if err != nil {
			return err
		}
		if _, err := w.AddBodyPartFromZone(zoneID, symptom, level); err != nil {
			return err
		}
	}
	return nil
}

func askHistory(w *intake.Wizard) error {
	r := w.Record()
	diseases := append([]string(nil), r.Diseases...)
	medications := r.Medications

	err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("これまでにかかった病気").
			Options(huh.NewOptions(intake.DiseaseOptions...)...).
			Value(&diseases),
		huh.NewInput().Title("服用中のお薬").Value(&medications),
	)).Run()
	if err != nil {
		return err
	}

	other := ""
	for _, d := range diseases {
		if d == intake.DiseaseOther {
			other = r.HistoryOther
			if err := huh.NewInput().Title("その他の病気").Value(&other).Run(); err != nil {
				return err
			}
			break
		}
	}
	w.SetHistory(intake.History{Diseases: diseases, Other: other, Medications: medications})
	return nil
}

func askCheckups(w *intake.Wizard) error {
	r := w.Record()
	general, specific := string(r.CheckupGeneral), string(r.CheckupSpecific)
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("この1年間に健康診断を受けましたか？").
			Options(stringOptions(intake.CheckupOptions)...).Value(&general),
		huh.NewSelect[string]().Title("この1年間に特定健診を受けましたか？").
			Options(stringOptions(intake.CheckupOptions)...).Value(&specific),
	)).Run()
	if err != nil {
		return err
	}
	w.SetCheckups(intake.CheckupAnswer(general), intake.CheckupAnswer(specific))
	return nil
}

func askFallRisk(w *intake.Wizard) error {
	r := w.Record()
	fell, unstable, fear := string(r.FallHistory), string(r.UnstableFeeling), string(r.FearOfFalling)
	yesNo := stringOptions(intake.YesNoOptions)

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("この1年間に転んだことがありますか？").Options(yesNo...).Value(&fell),
		huh.NewSelect[string]().Title("歩く時にふらつくことがありますか？").Options(yesNo...).Value(&unstable),
		huh.NewSelect[string]().Title("転ぶことが怖いと感じますか？").Options(yesNo...).Value(&fear),
	)).Run()
	if err != nil {
		return err
	}
	w.SetFallScreening(intake.FallScreening{
		FallHistory:     intake.YesNo(fell),
		UnstableFeeling: intake.YesNo(unstable),
		FearOfFalling:   intake.YesNo(fear),
	})
	if intake.YesNo(fell) != intake.AnswerYes {
		return nil
	}

	r = w.Record()
	count, injury := r.FallCount, string(r.FallInjury)
	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("転んだ回数").Value(&count),
		huh.NewSelect[string]().Title("けがをしましたか？").
			Options(stringOptions(intake.InjuryOptions)...).Value(&injury),
	)).Run()
	if err != nil {
		return err
	}
	w.SetFallDetails(count, intake.Injury(injury))
	return nil
}

func askBloodPressure(w *intake.Wizard) error {
	r := w.Record()
	systolic, diastolic := r.BPSystolic, r.BPDiastolic
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("最高血圧 (mmHg)").Value(&systolic),
		huh.NewInput().Title("最低血圧 (mmHg)").Value(&diastolic),
	)).Run()
	if err != nil {
		return err
	}
	w.SetBloodPressure(systolic, diastolic)
	return nil
}

func stringOptions[T ~string](values []T) []huh.Option[string] {
	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(string(v), string(v))
	}
	return opts
}
