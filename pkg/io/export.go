package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/callviz/pkg/errors"
)

// timestampLayout is used in generated output file names.
const timestampLayout = "20060102-150405"

// TimestampedPath derives an output path from the input file name:
// <dir>/<input-stem>_<YYYYMMDD-HHMMSS>.<ext>. An empty dir means the
// directory of input.
func TimestampedPath(dir, input, ext string, at time.Time) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "callgraph"
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	name := fmt.Sprintf("%s_%s.%s", stem, at.Format(timestampLayout), strings.TrimPrefix(ext, "."))
	return filepath.Join(dir, name)
}

// WriteArtifact writes data to path, creating parent directories as needed.
func WriteArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}

// ExportDOT writes a DOT document to path.
// This is a convenience wrapper around [WriteArtifact].
func ExportDOT(doc, path string) error {
	return WriteArtifact(path, []byte(doc))
}
