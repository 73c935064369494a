package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

type analyzeOptions struct {
	text                string
	age                 int
	weightKg            float64
	allergies           []string
	conditions          []string
	includeAlternatives bool
}

func newAnalyzeCmd(root *RootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze prescription text for one patient",
		Example: `  rxmed analyze --text "Aspirin 100mg OD for 7 days" --age 45 --weight 70
  rxmed analyze --text "Warfarin 5mg daily" --age 70 --weight 65 --allergy aspirin --alternatives`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.text, "text", "t", "", "prescription text (required)")
	f.IntVar(&opts.age, "age", 40, "patient age in years")
	f.Float64Var(&opts.weightKg, "weight", 70, "patient weight in kilograms")
	f.StringArrayVar(&opts.allergies, "allergy", nil, "patient allergy (repeatable)")
	f.StringArrayVar(&opts.conditions, "condition", nil, "patient medical condition (repeatable)")
	f.BoolVar(&opts.includeAlternatives, "alternatives", false, "suggest alternatives for allergy conflicts")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *RootOptions, opts *analyzeOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	p := buildPipeline(cfg, logger, nil)

	result, err := p.service.Analyze(cmd.Context(), rx.AnalysisRequest{
		Text: opts.text,
		Patient: rx.Patient{
			Age:               opts.age,
			WeightKg:          opts.weightKg,
			Allergies:         opts.allergies,
			MedicalConditions: opts.conditions,
		},
		IncludeAlternatives: opts.includeAlternatives,
	})
	if err != nil {
		return err
	}

	if root.OutputJSON {
		return printJSON(result)
	}
	printAnalysisText(result)
	return nil
}

func printAnalysisText(result rx.AnalysisResult) {
	fmt.Printf("Medications (%d):\n", len(result.Medications))
	for _, m := range result.Medications {
		parts := []string{m.DrugName}
		if m.Strength != "" {
			parts = append(parts, m.Strength)
		}
		if m.Frequency != "" {
			parts = append(parts, m.Frequency)
		}
		if m.Duration != "" {
			parts = append(parts, "for "+m.Duration)
		}
		fmt.Printf("  - %s [%s, confidence %.2f]\n", strings.Join(parts, " "), m.Route, m.Confidence)
	}

	if len(result.Mappings) > 0 {
		fmt.Printf("RxNorm mappings (%d):\n", len(result.Mappings))
		for _, m := range result.Mappings {
			fmt.Printf("  - %s -> rxcui %s (%s, confidence %.2f)\n", m.SourceDrug, m.RxCUI, m.Name, m.Confidence)
		}
	}

	if len(result.Alerts) > 0 {
		fmt.Printf("Safety alerts (%d):\n", len(result.Alerts))
		for _, a := range result.Alerts {
			fmt.Printf("  - [%s] %s: %s\n", a.Severity, a.Message, a.Recommendation)
		}
	}

	if len(result.Interactions) > 0 {
		fmt.Printf("Drug interactions (%d):\n", len(result.Interactions))
		for _, i := range result.Interactions {
			fmt.Printf("  - [%s] %s + %s: %s\n", i.Severity, i.Drug1, i.Drug2, i.Description)
		}
	}

	if len(result.Alternatives) > 0 {
		fmt.Printf("Suggested alternatives (%d):\n", len(result.Alternatives))
		for _, a := range result.Alternatives {
			fmt.Printf("  - %s (%s)\n", a.DrugName, a.Reason)
		}
	}

	fmt.Printf("Analysis confidence: %.2f (%d ms)\n",
		result.AnalysisConfidence, result.ProcessingTimeMillis)
}
