package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"health-intake/internal/indicator"
)

func indicatorsCmd() *cobra.Command {
	var (
		height, weight        string
		systolic, diastolic   string
		fallHistory, unstable string
		fear                  string
	)
	cmd := &cobra.Command{
		Use:   "indicators",
		Short: "Compute BMI, blood-pressure advice and 3KQ fall risk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			bmi := indicator.ComputeBMI(height, weight)
			if bmi == "" {
				bmi = "-"
			}
			fmt.Fprintln(out, labelStyle.Render("BMI")+bmi)

			if systolic != "" && diastolic != "" {
				tier := indicator.ClassifyBloodPressure(systolic, diastolic)
				fmt.Fprintln(out, labelStyle.Render("血圧")+fmt.Sprintf("%s/%s mmHg", systolic, diastolic))
				fmt.Fprintln(out, tierBox(tier, tier.Advice()))
			}

			judgment := indicator.JudgeFallRisk(fallHistory, unstable, fear)
			value := string(judgment)
			if judgment == indicator.JudgmentAtRisk {
				value = alertStyle.Render(value)
			}
			fmt.Fprintln(out, labelStyle.Render("転倒リスク")+value)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&height, "height", "", "height in cm")
	f.StringVar(&weight, "weight", "", "weight in kg")
	f.StringVar(&systolic, "systolic", "", "systolic pressure in mmHg")
	f.StringVar(&diastolic, "diastolic", "", "diastolic pressure in mmHg")
	f.StringVar(&fallHistory, "fall-history", "", "fell in the past year (はい/いいえ)")
	f.StringVar(&unstable, "unstable", "", "feels unstable when walking (はい/いいえ)")
	f.StringVar(&fear, "fear", "", "afraid of falling (はい/いいえ)")
	return cmd
}
