package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// stdoutPath selects standard output as the destination of -o.
const stdoutPath = "-"

// artifactWriteParams describes rendered artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // dataset path, used to derive output names
	output    string // explicit file (single format) or base path (multiple)
	suffix    string // appended to derived names, e.g. "_2016"
}

// writeArtifacts writes each requested format and returns the paths written.
// With a single format an explicit output is used verbatim; otherwise names
// are derived as <base><suffix>.<format>.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output was rendered", format)
		}

		path := p.output
		if len(p.formats) > 1 || path == "" || isDir(path) {
			path = basePath(p.output, p.input) + p.suffix + "." + format
		}
		if err := writeOutput(path, data); err != nil {
			return paths, err
		}
		if path != stdoutPath {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input and keeps the file
// in the working directory. A directory output keeps the input's base name.
// If output has a format extension (.svg, .html, etc.), it strips it.
func basePath(output, input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if name == "" || name == "." || name == "/" {
		name = appName
	}
	switch {
	case output == "":
		return name
	case isDir(output):
		return filepath.Join(output, name)
	}
	ext := filepath.Ext(output)
	if knownFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func knownFormat(f string) bool {
	return pipeline.FlowFormats[f] || pipeline.MapFormats[f]
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// openOutput opens path for writing, or standard output for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
