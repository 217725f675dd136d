package docemitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	genspec "github.com/mark3labs/csdoc/internal/spec"
	"go.uber.org/zap"
)

// Options controls where and how the document is written.
type Options struct {
	Out    string // file path; empty writes to the provided writer
	Format Format
	Force  bool // overwrite an existing Out file
	DryRun bool // render but don't write
	Logger *zap.Logger
}

// Result describes what was (or would have been) written.
type Result struct {
	Path   string // absolute path, empty for writer output
	Format Format
	Size   int
}

// Emit serializes doc and writes it to opts.Out, or to w when Out is empty.
// Nothing is written unless serialization succeeds.
func Emit(ctx context.Context, doc *genspec.Document, opts Options, w io.Writer) (*Result, error) {
	_ = ctx
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}

	data, err := Serialize(doc, format)
	if err != nil {
		return nil, err
	}
	res := &Result{Format: format, Size: len(data)}

	out := strings.TrimSpace(opts.Out)
	if out == "" {
		if opts.DryRun {
			log.Debug("dry run, document not written", zap.String("format", string(format)), zap.Int("bytes", len(data)))
			return res, nil
		}
		if w == nil {
			return nil, fmt.Errorf("docemitter: no output writer")
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("docemitter: write output: %w", err)
		}
		log.Debug("document written", zap.String("format", string(format)), zap.Int("bytes", len(data)))
		return res, nil
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve out path: %w", err)
	}
	res.Path = abs
	if opts.DryRun {
		log.Debug("dry run, document not written", zap.String("path", abs), zap.Int("bytes", len(data)))
		return res, nil
	}
	if err := writeFile(abs, data, opts.Force); err != nil {
		return nil, err
	}
	log.Debug("document written", zap.String("path", abs), zap.String("format", string(format)), zap.Int("bytes", len(data)))
	return res, nil
}

func writeFile(abs string, content []byte, force bool) error {
	if st, err := os.Stat(abs); err == nil {
		if st.IsDir() {
			return fmt.Errorf("docemitter: output path %q is a directory", abs)
		}
		if !force {
			return fmt.Errorf("docemitter: output file %q already exists (use --force to overwrite)", abs)
		}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(abs), err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(abs), err)
	}
	return nil
}
