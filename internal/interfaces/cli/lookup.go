package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type lookupOptions struct {
	maxResults int
}

func newLookupCmd(root *RootOptions) *cobra.Command {
	opts := &lookupOptions{}

	cmd := &cobra.Command{
		Use:   "lookup <drug-name>",
		Short: "Look up RxNorm concepts for a drug name",
		Args:  cobra.ExactArgs(1),
		Example: `  rxmed lookup aspirin
  rxmed lookup "metformin hydrochloride" --max-results 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "maximum concepts to return (0 uses the configured default)")

	return cmd
}

func runLookup(cmd *cobra.Command, root *RootOptions, opts *lookupOptions, drugName string) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	p := buildPipeline(cfg, logger, nil)

	mappings := p.mapper.Search(cmd.Context(), drugName, opts.maxResults)
	if len(mappings) == 0 {
		return fmt.Errorf("no RxNorm concept matches %q", drugName)
	}

	if root.OutputJSON {
		return printJSON(mappings)
	}
	for _, m := range mappings {
		line := fmt.Sprintf("rxcui %s  %s  (confidence %.2f)", m.RxCUI, m.Name, m.Confidence)
		if m.Synonym != "" {
			line += "  synonym: " + m.Synonym
		}
		fmt.Println(line)
	}
	return nil
}
