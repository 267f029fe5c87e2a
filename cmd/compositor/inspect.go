package compositor

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/railwayapp/compositor/internal/convert"
	"github.com/railwayapp/compositor/internal/export"
	"github.com/railwayapp/compositor/internal/filesystems"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Print the blueprints extracted from a Pulumi program",
	Long: `Inspect runs only the extraction step and prints the images and container
apps it found as JSON. This is useful for checking what convert will see
before any services are generated.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{
			"kind":              "kind",
			"legacy-normalizer": "legacy-normalizer",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		filesystem := filesystems.NewLocalFS()
		input, err := locateProgram(filesystem, args[0])
		if err != nil {
			return err
		}
		content, err := filesystem.ReadFile(input)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		converter := convert.New(convert.Options{LegacyParser: viper.GetBool("legacy-normalizer")})
		set, kind, err := converter.Extract(cmd.Context(), convert.Input{
			Filename: input,
			Kind:     viper.GetString("kind"),
			Content:  content,
		})
		if err != nil {
			return err
		}

		exporter := export.NewJSONExporter()
		out, err := exporter.Export(export.Report{Source: input, Kind: kind, Set: set})
		if err != nil {
			return fmt.Errorf("%s export failed: %w", exporter.Name(), err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	inspectCmd.Flags().String("kind", "", "extractor to use (yaml, json, script); detected from the file extension when empty")
	inspectCmd.Flags().Bool("legacy-normalizer", false, "parse script object literals line by line")
	rootCmd.AddCommand(inspectCmd)
}
