// Package dispatch exposes each engine operation as a named command
// taking primitive string arguments and returning a human-readable
// result string. It is the non-network command surface of the engine.
package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/okian/matchpoint/internal/adapters/repository"
	"github.com/okian/matchpoint/internal/app"
	"github.com/okian/matchpoint/pkg/logger"
)

// Args carries a command's named arguments as raw strings.
type Args map[string]string

// Get returns the named argument, or "" when absent.
func (a Args) Get(name string) string {
	return a[name]
}

// Int parses the named argument as an integer.
func (a Args) Int(name string) (int, error) {
	raw, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadArgument, name)
	}
	return n, nil
}

// IntDefault parses the named argument, falling back to def when absent.
func (a Args) IntDefault(name string, def int) (int, error) {
	if _, ok := a[name]; !ok {
		return def, nil
	}
	return a.Int(name)
}

// Require returns the named argument or an error when absent or empty.
func (a Args) Require(name string) (string, error) {
	raw := a[name]
	if raw == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return raw, nil
}

// Command is one named callable on the registry.
type Command struct {
	Name  string
	Usage string
	Run   func(ctx context.Context, args Args) string
}

// Registry maps command names to handlers over one shared store.
type Registry struct {
	store         repository.Store
	log           logger.Logger
	rng           *rand.Rand
	defaultCourts int
	commands      map[string]Command
}

// RegistryOption applies a configuration option to the Registry.
type RegistryOption func(*Registry)

// WithLogger sets a custom logger passed through to engines.
func WithLogger(log logger.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRand sets the random source passed through to engines, allowing
// deterministic pairing in tests.
func WithRand(rng *rand.Rand) RegistryOption {
	return func(r *Registry) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithDefaultCourts sets the court count used when create_tournament
// omits total_courts.
func WithDefaultCourts(n int) RegistryOption {
	return func(r *Registry) {
		if n >= 0 {
			r.defaultCourts = n
		}
	}
}

// NewRegistry creates a Registry with all engine commands registered.
func NewRegistry(store repository.Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:         store,
		log:           logger.Discard(),
		defaultCourts: 3,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.register()
	return r
}

// Invoke runs the named command. Unknown names and all command failures
// render as "Error: ..." strings; there are no structured error codes at
// this boundary.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) string {
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Sprintf("Error: Unknown command %q. Run without arguments for usage.", name)
	}
	return cmd.Run(ctx, args)
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) add(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// engine builds a per-tournament engine. Engines are stateless between
// calls, so constructing one per invocation is cheap and keeps the
// registry tournament-agnostic.
func (r *Registry) engine(tournamentID string) *app.Engine {
	opts := []app.Option{app.WithLogger(r.log)}
	if r.rng != nil {
		opts = append(opts, app.WithRand(r.rng))
	}
	return app.New(r.store, tournamentID, opts...)
}
