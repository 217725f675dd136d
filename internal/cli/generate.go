package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/csdoc/internal/commonstorage"
	"github.com/mark3labs/csdoc/internal/emitter/docemitter"
	genspec "github.com/mark3labs/csdoc/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Format     string `validate:"oneof=json yaml"`
	Out        string
	ServerURL  string `validate:"omitempty,url"`
	APIVersion string
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Format: "json"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Assemble and write the OpenAPI document",
		Long: "Assemble the Common Storage OpenAPI document and write it to stdout or a file. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  csdoc generate > openapi.json
  csdoc generate --format yaml --out ./openapi.yaml --force
  csdoc --config csdoc.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.String("format", "", "Output format (json|yaml); defaults to json")
	flags.String("out", "", "Output file (stdout when omitted)")
	flags.String("server", "", "Server URL listed in the document")
	flags.String("api-version", "", "Override info.version")
	flags.Bool("dry-run", false, "Assemble and validate without writing output")
	flags.Bool("force", false, "Overwrite an existing output file")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"format", &cfg.Format},
		{"out", &cfg.Out},
		{"server", &cfg.ServerURL},
		{"api-version", &cfg.APIVersion},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}

	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" || c.Format == "yml" {
		if c.Format == "yml" {
			c.Format = "yaml"
		} else {
			c.Format = "json"
		}
	}
	c.Out = strings.TrimSpace(c.Out)
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
}

func (c *GenerateConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) && len(valErrs) > 0 {
			ve := valErrs[0]
			return newUsageError(fmt.Sprintf("generate: %s %s", flagName(ve.Field()), genspec.FormatValidationError(ve)))
		}
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	return nil
}

func flagName(field string) string {
	switch field {
	case "Format":
		return "--format"
	case "ServerURL":
		return "--server"
	default:
		return field
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig, stdout, stderr io.Writer) error {
	log := newLogger(stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	// 1) Build registries, compose endpoints and assemble the document
	var opts []commonstorage.Option
	opts = append(opts, commonstorage.WithLogger(log))
	if cfg.ServerURL != "" {
		opts = append(opts, commonstorage.WithServerURL(cfg.ServerURL))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, commonstorage.WithVersion(cfg.APIVersion))
	}
	doc, err := commonstorage.Build(ctx, opts...)
	if err != nil {
		return fromSpecError("generate", err)
	}

	// 2) Serialize and write; nothing is written on failure
	format, err := docemitter.ParseFormat(cfg.Format)
	if err != nil {
		return newUsageError(err.Error())
	}
	res, err := docemitter.Emit(ctx, doc, docemitter.Options{
		Out:    cfg.Out,
		Format: format,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: log,
	}, stdout)
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		target := res.Path
		if target == "" {
			target = "stdout"
		}
		fmt.Fprintf(stderr, "Planned write to %s (%s, %d bytes, %d operations)\n", target, res.Format, res.Size, doc.Endpoints())
	}
	return nil
}

func wrapOutputError(err error, out string) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		return fromSpecError("generate", err)
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") ||
		strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") || strings.Contains(lower, "directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", out, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "format":
			cfg.Format, err = valueAsString(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "server", "serverurl":
			cfg.ServerURL, err = valueAsString(value)
		case "apiversion":
			cfg.APIVersion, err = valueAsString(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
