package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/cabin/config"
	"github.com/Carmen-Shannon/cabin/engine/profiler"
	"github.com/Carmen-Shannon/cabin/engine/renderer/shader"
	"github.com/muesli/termenv"
)

// stageExtensions maps each stage to the extension of its output file.
var stageExtensions = map[shader.Stage]string{
	shader.StageVertex:   ".vert",
	shader.StageGeometry: ".geom",
	shader.StageFragment: ".frag",
}

// compiler writes processed shaders and reports problems. Watchers call it from several
// goroutines, so output is serialized.
type compiler struct {
	cfg       *config.Config
	listing   bool
	validator *shader.Validator
	prof      *profiler.Profiler

	mu     sync.Mutex
	out    *termenv.Output
	stdout io.Writer
}

// emit validates a result, writes its stage files and prints notices and listings.
// It reports whether everything succeeded.
func (c *compiler) emit(key string, result shader.ProcessResult) bool {
	for _, n := range result.Notices {
		c.notice(fmt.Sprintf("%s (%s): %s", key, n.Stage, n))
	}

	if c.validator != nil {
		if _, err := c.validator.Validate(result); err != nil {
			c.fail(fmt.Errorf("%s: %w", key, err))
			return false
		}
	}

	paths, err := writeStages(c.cfg.OutputDir, key, result)
	if err != nil {
		c.fail(err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		fmt.Fprintln(c.stdout, p)
	}
	if c.listing {
		for _, stage := range shader.Stages {
			if !result.HasStage(stage) {
				continue
			}
			fmt.Fprintf(c.stdout, "== %s %s ==\n%s", key, stage, shader.NumberLines(result.Source(stage)))
		}
	}
	return true
}

func (c *compiler) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.out.String(err.Error()).Foreground(c.out.Color("1")).String())
}

func (c *compiler) notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.out.String(msg).Foreground(c.out.Color("3")).String())
}

// writeStages writes every present stage of result to dir as <key><ext>.
//
// Parameters:
//   - dir: the output directory, created if missing
//   - key: the shader key used as file name
//   - result: the processed shader
//
// Returns:
//   - []string: the written file paths in stage order
//   - error: an error if the directory or a file cannot be written
func writeStages(dir, key string, result shader.ProcessResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	paths := make([]string, 0, len(shader.Stages))
	for _, stage := range shader.Stages {
		if !result.HasStage(stage) {
			continue
		}
		p := filepath.Join(dir, key+stageExtensions[stage])
		if err := os.WriteFile(p, []byte(result.Source(stage)), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s stage of %s: %w", stage, key, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
