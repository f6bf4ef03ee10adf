package shader

import (
	"errors"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// library is the implementation of the Library interface.
type library struct {
	pp      PreProcessor
	workers int

	// pool manages a bounded set of reusable goroutines that run one pre-processor call each.
	pool worker.DynamicWorkerPool

	mu      sync.RWMutex
	shaders map[string]Shader
}

// Library loads and caches many entry shaders, processing them in parallel. Pre-processor runs
// share no state, so every entry is processed on its own worker.
type Library interface {
	// Load processes every entry concurrently and stores the resulting shaders under their keys,
	// replacing shaders previously loaded under the same key. Entries that fail are not stored.
	//
	// Parameters:
	//   - entries: entry shader paths keyed by shader key
	//
	// Returns:
	//   - map[string]Shader: the shaders built by this call, keyed by shader key
	//   - error: every failure joined in key order, or nil
	Load(entries map[string]string) (map[string]Shader, error)

	// Shader retrieves a loaded shader.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - Shader: the shader, or nil if no shader was loaded under key
	Shader(key string) Shader

	// Keys returns the keys of every loaded shader in sorted order.
	//
	// Returns:
	//   - []string: the sorted keys
	Keys() []string
}

var _ Library = &library{}

// NewLibrary creates an empty Library.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - Library: the new library
func NewLibrary(options ...LibraryBuilderOption) Library {
	l := &library{
		workers: max(runtime.NumCPU()-1, 1),
		shaders: make(map[string]Shader),
	}
	for _, option := range options {
		option(l)
	}
	if l.pp == nil {
		l.pp = NewPreProcessor()
	}

	// Initialize the pool after options so WithWorkers can override the default.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *library) Load(entries map[string]string) (map[string]Shader, error) {
	keys := slices.Sorted(maps.Keys(entries))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		built   = make(map[string]Shader, len(keys))
		failure = make(map[string]error)
	)
	for id, key := range keys {
		path := entries[key]
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()

				s, err := NewShader(key, WithSourceFile(path), WithPreProcessor(l.pp))
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failure[key] = err
					return nil, err
				}
				built[key] = s
				return s, nil
			},
		})
	}
	wg.Wait()

	l.mu.Lock()
	maps.Copy(l.shaders, built)
	l.mu.Unlock()

	errs := make([]error, 0, len(failure))
	for _, key := range keys {
		if err, ok := failure[key]; ok {
			errs = append(errs, err)
		}
	}
	return built, errors.Join(errs...)
}

func (l *library) Shader(key string) Shader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shaders[key]
}

func (l *library) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.shaders))
}

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithWorkers sets the maximum number of shaders processed concurrently.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LibraryBuilderOption: a function that sets the worker count
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *library) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLibraryPreProcessor sets the pre-processor shared by every load.
//
// Parameters:
//   - pp: the pre-processor to use
//
// Returns:
//   - LibraryBuilderOption: a function that sets the pre-processor
func WithLibraryPreProcessor(pp PreProcessor) LibraryBuilderOption {
	return func(l *library) {
		l.pp = pp
	}
}
