package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	genspec "github.com/mark3labs/csdoc/internal/spec"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ValidateConfig captures the options for the validate command.
type ValidateConfig struct {
	Input   string `validate:"required"`
	Verbose bool
}

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a generated document loads as valid OpenAPI 3",
		Long:  "Load a previously generated JSON or YAML document, validate it against OpenAPI 3.0 and print a route summary.",
		Example: strings.TrimSpace(`  csdoc validate --input openapi.json
  csdoc validate --input openapi.yaml -v`),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &ValidateConfig{Input: strings.TrimSpace(input), Verbose: verbose}
			if err := validate.Struct(cfg); err != nil {
				return newUsageError("validate: --input is required")
			}
			return validateRunner(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().String("input", "", "Path to a generated OpenAPI document (JSON or YAML)")
	return cmd
}

func runValidate(ctx context.Context, cfg *ValidateConfig, stdout, stderr io.Writer) error {
	log := newLogger(stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		return fromSpecError("validate", err)
	}
	sm, err := genspec.Normalize(ctx, doc)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	log.Debug("document loaded",
		zap.String("input", cfg.Input),
		zap.Int("operations", len(sm.Operations)),
	)

	fmt.Fprintf(stdout, "%s %s: %d operations\n", sm.Title, sm.Version, len(sm.Operations))
	for _, op := range sm.Operations {
		codes := make([]string, 0, len(op.Responses))
		for _, r := range op.Responses {
			codes = append(codes, r.Status)
		}
		fmt.Fprintf(stdout, "  %-7s %-24s %s\n", strings.ToUpper(string(op.Method)), op.Path, strings.Join(codes, ","))
	}
	return nil
}
