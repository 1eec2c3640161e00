package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/validator"
)

// ErrInvalidConfig is returned when validation reports errors.
var ErrInvalidConfig = errors.New("config validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	Long: `Validate the config file without connecting to a database.

This command checks:
- Idempotency policies (allowed values per object kind)
- File and data globs
- Line ending setting
- Output directories (disabled kinds, shared or escaping directories)
- Connections (missing server or database, duplicate names)

Examples:
  ssc validate                 # Validate ssc.json
  ssc validate -c other.json   # Validate another config file
  ssc validate --format json   # Output validation results as JSON
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		result := validator.NewConfigValidator().ValidateConfig(cfg)
		out := cmd.OutOrStdout()
		if validateFormat == "json" {
			err = outputJSON(out, result)
		} else {
			err = outputText(out, result)
		}
		if err != nil {
			return err
		}
		if !result.Valid {
			return ErrInvalidConfig
		}
		return nil
	},
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

// loadValidConfig loads the config file and refuses it when validation
// reports errors. Commands that generate or replay scripts use it so an
// unknown policy never yields unguarded scripts.
func loadValidConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	result := validator.NewConfigValidator().ValidateConfig(cfg)
	if result.Valid {
		return cfg, nil
	}
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = e.Message
		if e.Key != "" {
			msgs[i] = e.Key + ": " + e.Message
		}
	}
	return nil, fmt.Errorf("%w: %s (run 'ssc validate' for details)", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func outputJSON(out io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printFindings(out io.Writer, title string, findings []validator.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s (%d):\n", title, len(findings))
	for i, f := range findings {
		fmt.Fprintf(out, "  %d. ", i+1)
		if f.Key != "" {
			fmt.Fprintf(out, "[%s]", f.Key)
		}
		if f.Value != "" {
			fmt.Fprintf(out, " (%s)", f.Value)
		}
		fmt.Fprintf(out, ": %s\n", f.Message)
	}
}

func outputText(out io.Writer, result *validator.ValidationResult) error {
	if result.Valid {
		color.New(color.FgGreen).Fprintln(out, "✅ Config validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(out, "❌ Config validation failed!")
	}

	printFindings(out, "🔴 Errors", result.Errors)
	printFindings(out, "🟡 Warnings", result.Warnings)
	printFindings(out, "🔵 Info", result.Info)

	fmt.Fprintf(out, "\n📊 Summary:\n")
	fmt.Fprintf(out, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(out, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(out, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(out, "\n🎉 Your config is ready to pull and push!\n")
	} else {
		fmt.Fprintf(out, "\n💡 Fix the errors above before pulling or pushing.\n")
	}
	return nil
}
