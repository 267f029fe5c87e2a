package compositor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/convert"
	"github.com/railwayapp/compositor/internal/discovery"
	"github.com/railwayapp/compositor/internal/environment"
	"github.com/railwayapp/compositor/internal/environment/types"
	"github.com/railwayapp/compositor/internal/extractors"
	"github.com/railwayapp/compositor/internal/filesystems"
	"github.com/railwayapp/compositor/internal/output"
	"github.com/railwayapp/compositor/internal/synth"
)

var errUnsupportedProvider = errors.New("provider is not supported yet")

// providers lists every provider name the convert command knows about.
// Only pulumi has an implementation.
var providers = []string{"pulumi", "azure", "terraform"}

const stdoutTarget = "-"

var convertCmd = &cobra.Command{
	Use:   "convert <provider>",
	Short: "Convert a Pulumi program into a docker-compose file with dapr sidecars",
	Long: `Convert reads a Pulumi program (Pulumi.yaml, Pulumi.json or a TypeScript or
JavaScript program, or a project directory holding one) and writes docker-compose.yml into the output directory.
An existing docker-compose.yml is renamed to a timestamped .bak file first.
Nothing is written when the conversion fails.`,
	Example: `  compositor convert pulumi -i infra/Pulumi.yaml -o .
  compositor convert pulumi -i infra/index.ts -o - --env-file .env`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: providers,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{
			"input":             "input",
			"output":            "output",
			"kind":              "kind",
			"env-file":          "env-file",
			"keep-env":          "keep-env",
			"legacy-normalizer": "legacy-normalizer",
			"sidecar.image":     "sidecar-image",
			"sidecar.binary":    "sidecar-binary",
			"placement.address": "placement-address",
			"network":           "network",
			"no-validate":       "no-validate",
			"no-backup":         "no-backup",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runConvert(cmd.Context(), args[0])
		switch {
		case errors.Is(err, convert.ErrNothingToConvert):
			output.Info("the program declares no container apps; check the input file and --kind")
		case errors.Is(err, extractors.ErrUnsupportedInput):
			output.Info("supported inputs are Pulumi.yaml, Pulumi.json and TypeScript or JavaScript programs")
		}
		return err
	},
}

func init() {
	flags := convertCmd.Flags()
	flags.StringP("input", "i", "", "Pulumi program or project directory to convert")
	flags.StringP("output", "o", ".", `directory to write docker-compose.yml into, or "-" for stdout`)
	flags.String("kind", "", "extractor to use (yaml, json, script); detected from the file extension when empty")
	flags.StringSlice("env-file", nil, "dotenv files whose variables are added to every app service")
	flags.Bool("keep-env", false, "carry service environments over from the docker-compose.yml being replaced")
	flags.Bool("legacy-normalizer", false, "parse script object literals line by line")
	flags.String("sidecar-image", "", "daprd image for sidecars (default daprio/daprd:edge)")
	flags.String("sidecar-binary", "", "daprd binary inside the sidecar image (default ./daprd)")
	flags.String("placement-address", "", "placement address passed to sidecars (default placement:50006)")
	flags.String("network", "", "network app services join (default dapr-network)")
	flags.Bool("no-validate", false, "skip loading the result with compose-go")
	flags.Bool("no-backup", false, "overwrite an existing docker-compose.yml without a backup")
	cobra.CheckErr(convertCmd.MarkFlagRequired("input"))

	rootCmd.AddCommand(convertCmd)
}

func checkProvider(provider string) error {
	switch strings.ToLower(provider) {
	case "pulumi":
		return nil
	case "azure", "terraform":
		return fmt.Errorf("%w: %s", errUnsupportedProvider, provider)
	default:
		return fmt.Errorf("unknown provider %q, expected one of %s", provider, strings.Join(providers, ", "))
	}
}

func runConvert(ctx context.Context, provider string) error {
	if err := checkProvider(provider); err != nil {
		return err
	}

	filesystem := filesystems.NewLocalFS()
	outDir := viper.GetString("output")

	input, err := locateProgram(filesystem, viper.GetString("input"))
	if err != nil {
		return err
	}

	content, err := filesystem.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	env, err := loadEnvironment(ctx, filesystem, outDir)
	if err != nil {
		return err
	}

	converter := convert.New(convert.Options{
		Synth: synth.Options{
			SidecarImage:     viper.GetString("sidecar.image"),
			SidecarBinary:    viper.GetString("sidecar.binary"),
			PlacementAddress: viper.GetString("placement.address"),
			Network:          viper.GetString("network"),
		},
		LegacyParser:   viper.GetBool("legacy-normalizer"),
		SkipValidation: viper.GetBool("no-validate"),
		Environment:    env,
		FileSystem:     filesystem,
		BaseDir:        filepath.Dir(input),
	})

	result, err := converter.Convert(ctx, convert.Input{
		Filename: input,
		Kind:     viper.GetString("kind"),
		Content:  content,
	})
	if err != nil {
		return err
	}

	warnSensitive(env)

	if outDir == stdoutTarget {
		output.Print(string(result.Content))
		return nil
	}

	written, err := convert.Write(filesystem, result.Content, convert.WriteOptions{
		Dir:      outDir,
		NoBackup: viper.GetBool("no-backup"),
	})
	if err != nil {
		return err
	}
	if written.Backup != "" {
		output.Info("backed up previous compose file", "path", written.Backup)
	}

	printSummary(result, written.Path)
	return nil
}

// locateProgram accepts either a program file or a Pulumi project directory.
func locateProgram(filesystem filesystems.FileSystem, path string) (string, error) {
	program, err := discovery.FindProgram(filesystem, filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to locate program: %w", err)
	}
	if program.Runtime != "" {
		output.Debug("found Pulumi project", "project", program.Project, "runtime", program.Runtime, "program", program.Path)
	}
	return program.Path, nil
}

// loadEnvironment reads --env-file entries, then with --keep-env the
// per-service environments of the compose file about to be replaced.
func loadEnvironment(ctx context.Context, filesystem filesystems.FileSystem, outDir string) ([]types.EnvResult, error) {
	extractor := environment.NewExtractor(filesystem)

	var env []types.EnvResult
	for _, path := range viper.GetStringSlice("env-file") {
		results, err := extractor.ExtractEnvFile(ctx, path)
		if err != nil {
			return nil, err
		}
		output.Debug("loaded env file", "path", path, "vars", len(results))
		env = append(env, results...)
	}

	if !viper.GetBool("keep-env") || outDir == stdoutTarget {
		return env, nil
	}

	previous := filesystem.Join(outDir, convert.OutputFilename)
	exists, err := filesystems.Exists(filesystem, previous)
	if err != nil || !exists {
		return env, err
	}
	results, err := extractor.ExtractFile(ctx, previous)
	if err != nil {
		return nil, fmt.Errorf("failed to keep environment: %w", err)
	}
	output.Debug("kept environment from previous compose file", "path", previous, "vars", len(results))
	return append(env, results...), nil
}

func warnSensitive(env []types.EnvResult) {
	for _, result := range env {
		if result.Sensitive && result.HasValue {
			output.Warn("sensitive value written in plain text", "var", result.VarName, "source", result.Source)
		}
	}
}

func printSummary(result *convert.Result, path string) {
	output.Println(output.FormatCheckmark(fmt.Sprintf("Wrote %s", path)))
	for _, service := range result.Document.Services {
		output.Println(output.FormatService(service.Name, serviceSource(service), synth.IsSidecar(service)))
	}
	if len(result.Warnings) > 0 {
		output.Println(output.StyleDim.Render(fmt.Sprintf("  %d build context warning(s), see above", len(result.Warnings))))
	}
}

func serviceSource(service blueprint.ServiceDefinition) string {
	if service.Build != nil {
		return service.Build.Context
	}
	return service.Image
}
