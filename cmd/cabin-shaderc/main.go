// Command cabin-shaderc pre-processes cabin entry shaders into per-stage GLSL files.
//
// Usage:
//
//	cabin-shaderc [flags] [entry.glsl ...]
//
// Entries come from the positional arguments and from the [[shader]] tables of the optional
// -config file. For every entry <key>.vert, <key>.frag and, when present, <key>.geom are written
// to the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Carmen-Shannon/cabin/config"
	"github.com/Carmen-Shannon/cabin/engine/profiler"
	"github.com/Carmen-Shannon/cabin/engine/renderer/shader"
	"github.com/muesli/termenv"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("cabin-shaderc", flag.ContinueOnError)
	var (
		configPath     = fs.String("config", "", "TOML configuration file listing entry shaders")
		outputDir      = fs.String("o", config.DefaultOutputDir, "output directory for stage files")
		validate       = fs.Bool("validate", false, "validate vertex and fragment stages with the shader translator")
		validateOutput = fs.String("validate-output", config.DefaultValidateOutput, "translator output: glsl330, glsl410 or essl")
		watch          = fs.Bool("watch", false, "reprocess shaders whenever one of their files changes")
		listing        = fs.Bool("listing", false, "print numbered stage sources to stdout")
		logLevel       = fs.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
		workers        = fs.Int("workers", 0, "maximum shaders processed at once (0 = number of CPUs - 1)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		cfg = loaded
	}
	for _, entry := range fs.Args() {
		cfg.AddShader("", entry)
	}

	// explicitly set flags override the configuration file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutputDir = *outputDir
		case "validate":
			cfg.Validate.Enabled = *validate
		case "validate-output":
			cfg.Validate.Output = *validateOutput
		case "watch":
			cfg.Watch = *watch
		case "log-level":
			cfg.LogLevel = *logLevel
		case "workers":
			cfg.Workers = *workers
		}
	})
	if err := cfg.Check(); err != nil {
		log.Printf("%v", err)
		return 2
	}
	if len(cfg.Shaders) == 0 {
		fmt.Fprintln(os.Stderr, "cabin-shaderc: no entry shaders given")
		fs.Usage()
		return 2
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	shader.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &compiler{
		cfg:     cfg,
		listing: *listing,
		prof:    profiler.NewProfiler(logger),
		out:     termenv.NewOutput(os.Stderr),
		stdout:  os.Stdout,
	}
	if cfg.Validate.Enabled {
		v, err := shader.NewValidator(ctx, cfg.Validate.Output)
		if err != nil {
			c.fail(err)
			return 1
		}
		c.validator = v
	}

	if cfg.Watch {
		return c.watch(ctx)
	}
	return c.once()
}

// watch runs one watcher per entry until interrupted.
func (c *compiler) watch(ctx context.Context) int {
	pp := shader.NewPreProcessor()
	var wg sync.WaitGroup
	for _, s := range c.cfg.Shaders {
		w := shader.NewWatcher(pp, s.Path, func(result shader.ProcessResult, err error) {
			if err != nil {
				c.fail(err)
				c.prof.Tick(false)
				return
			}
			c.prof.Tick(c.emit(s.Key, result))
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				c.fail(err)
			}
		}()
	}
	wg.Wait()
	c.prof.Flush()
	return 0
}

// once processes every entry a single time.
func (c *compiler) once() int {
	lib := shader.NewLibrary(shader.WithWorkers(c.cfg.Workers))
	built, err := lib.Load(c.cfg.Entries())
	status := 0
	if err != nil {
		c.fail(err)
		status = 1
	}
	for _, key := range lib.Keys() {
		s, ok := built[key]
		if !ok {
			continue
		}
		emitted := c.emit(key, s.Result())
		if !emitted {
			status = 1
		}
		c.prof.Tick(emitted)
	}
	for range len(c.cfg.Shaders) - len(built) {
		c.prof.Tick(false)
	}
	c.prof.Flush()
	return status
}
