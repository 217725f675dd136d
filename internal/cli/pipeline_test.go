package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestGeneratePipeline_StdoutJSON(t *testing.T) {
	out, _, err := execute(t, "generate")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out, "{\n  \"openapi\": \"3.0.0\"") {
		t.Fatalf("unexpected output prefix: %.60s", out)
	}
	if !strings.Contains(out, `"/topic/{topic}"`) {
		t.Fatalf("expected /topic/{topic} in output")
	}
}

func TestGeneratePipeline_ServerAndVersion(t *testing.T) {
	out, _, err := execute(t, "generate", "--format", "yaml", "--server", "https://storage.example.org", "--api-version", "3.1.4")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "url: https://storage.example.org") {
		t.Fatalf("expected server override in output")
	}
	if !strings.Contains(out, "version: 3.1.4") {
		t.Fatalf("expected version override in output")
	}
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "openapi.json")
	out, errOut, err := execute(t, "generate", "--out", outPath, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "" {
		t.Fatalf("dry run must not write to stdout, got %d bytes", len(out))
	}
	if !strings.Contains(errOut, "Planned write to") || !strings.Contains(errOut, "13 operations") {
		t.Fatalf("expected dry-run plan output, got: %s", errOut)
	}
	if _, err := os.Stat(outPath); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_ThenValidate(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		outPath := filepath.Join(t.TempDir(), "openapi."+format)
		if _, _, err := execute(t, "generate", "--format", format, "--out", outPath); err != nil {
			t.Fatalf("generate %s: %v", format, err)
		}
		out, _, err := execute(t, "validate", "--input", outPath)
		if err != nil {
			t.Fatalf("validate %s: %v", format, err)
		}
		if !strings.HasPrefix(out, "Common Storage 1.0.0: 13 operations\n") {
			t.Fatalf("unexpected summary header: %s", out)
		}
		if !strings.Contains(out, "/content/{topic}") || !strings.Contains(out, "200,400,422,500") {
			t.Fatalf("unexpected summary: %s", out)
		}
	}
}

func TestGeneratePipeline_ExistingWithoutForce(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "openapi.json")
	if err := os.WriteFile(outPath, []byte("{}"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	_, _, err := execute(t, "generate", "--out", outPath)
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists usage error, got %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("existing file must be left untouched")
	}

	if _, _, err := execute(t, "generate", "--out", outPath, "--force"); err != nil {
		t.Fatalf("forced generate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	_, _, err := execute(t, "validate")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--input is required") {
		t.Fatalf("expected missing input usage error, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	_, _, err = execute(t, "validate", "--input", missing)
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "Code: InputError") {
		t.Fatalf("expected InputError usage error, got %v", err)
	}

	swagger := filepath.Join(t.TempDir(), "swagger.yaml")
	if err := os.WriteFile(swagger, []byte("swagger: \"2.0\"\npaths: {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err = execute(t, "validate", "--input", swagger)
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "Code: ParseError") {
		t.Fatalf("expected ParseError usage error, got %v", err)
	}
}

func TestRootWithoutSubcommandShowsHelp(t *testing.T) {
	out, _, err := execute(t)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "generate") || !strings.Contains(out, "validate") {
		t.Fatalf("expected help listing subcommands, got: %s", out)
	}
}
