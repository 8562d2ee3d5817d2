// Package loader geocodes codebook records stored as JSON files.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexivanou/ddigeo/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const geoCoverageKey = "geo_coverage"

// Resolver fills in coverage identifiers for a batch of records
type Resolver interface {
	ResolveAll(ctx context.Context, records []*model.Codebook) error
}

// Options control where results go
type Options struct {
	// DryRun resolves records without writing anything back
	DryRun bool
	// OutputDir receives the resolved files; empty means overwrite in place
	OutputDir string
}

// Summary reports what a run did
type Summary struct {
	Files      int
	Records    int
	Resolved   int
	Unresolved int
	Written    int
}

// Loader reads record files, geocodes them and writes them back
type Loader struct {
	resolver Resolver
	opts     Options
	logger   *zap.Logger
}

// New creates a loader
func New(resolver Resolver, opts Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{resolver: resolver, opts: opts, logger: logger}
}

// Run processes every path. Directories contribute their *.json files.
// Geocoding failures are returned after all files are handled; unreadable
// input stops the run before anything is geocoded.
func (l *Loader) Run(ctx context.Context, paths []string) (*Summary, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var errs error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, multierr.Append(errs, err)
		}

		file, err := ReadFile(path)
		if err != nil {
			return summary, err
		}
		records := file.Records
		summary.Files++
		summary.Records += len(records)

		for _, cb := range records {
			for i := range cb.GeoCoverage {
				cb.GeoCoverage[i].ClearID()
			}
		}

		if err := l.resolver.ResolveAll(ctx, records); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
		}

		for _, cb := range records {
			for _, term := range cb.GeoCoverage {
				switch {
				case term.ID != nil:
					summary.Resolved++
				case term.Value != model.GlobalCoverage:
					summary.Unresolved++
					l.logger.Warn("unresolved coverage term",
						zap.String("file", path),
						zap.String("record", cb.ID),
						zap.String("term", term.Value))
				}
			}
		}

		if l.opts.DryRun {
			l.logger.Info("dry run, not writing", zap.String("file", path), zap.Int("records", len(records)))
			continue
		}

		out := path
		if l.opts.OutputDir != "" {
			out = filepath.Join(l.opts.OutputDir, filepath.Base(path))
		}
		if err := file.Write(out); err != nil {
			return summary, err
		}
		summary.Written++
		l.logger.Info("records written", zap.String("file", out), zap.Int("records", len(records)))
	}

	return summary, errs
}

// File is a decoded record file. Only geo_coverage is re-encoded on write;
// every other field of a record is written back as it was read.
type File struct {
	Records []*model.Codebook
	// Single is set when the file held one record rather than an array
	Single  bool
	raw     []map[string]json.RawMessage
}

// ReadFile decodes a file holding either one record or an array of them
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f := &File{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &f.raw)
	} else {
		f.Single = true
		f.raw = make([]map[string]json.RawMessage, 1)
		err = json.Unmarshal(trimmed, &f.raw[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	f.Records = make([]*model.Codebook, len(f.raw))
	for i, fields := range f.raw {
		if fields == nil {
			return nil, fmt.Errorf("failed to decode %s: record %d is not an object", path, i)
		}
		cb, err := decodeRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: record %d: %w", path, i, err)
		}
		f.Records[i] = cb
	}
	return f, nil
}

func decodeRecord(fields map[string]json.RawMessage) (*model.Codebook, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var cb model.Codebook
	if err := json.Unmarshal(data, &cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

// Write encodes the file to path in the form it was read
func (f *File) Write(path string) error {
	for i, cb := range f.Records {
		if _, ok := f.raw[i][geoCoverageKey]; !ok && len(cb.GeoCoverage) == 0 {
			continue
		}
		coverage, err := json.Marshal(cb.GeoCoverage)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		f.raw[i][geoCoverageKey] = coverage
	}

	var v interface{} = f.raw
	if f.Single && len(f.raw) == 1 {
		v = f.raw[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}
