package sim

import (
	"io"
	"log/slog"

	"github.com/san-kum/kinsim/internal/integrators"
)

const (
	DefaultMethod   = "rk45"
	DefaultMaxSteps = 1_000_000
)

type options struct {
	method      string
	rtol, atol  float64
	dt          float64
	initialStep float64
	minStep     float64
	maxSteps    int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		method:   DefaultMethod,
		rtol:     integrators.DefaultRelTol,
		atol:     integrators.DefaultAbsTol,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type Option func(*options)

// WithMethod selects the integration method by name (see integrators.Names).
func WithMethod(name string) Option {
	return func(o *options) { o.method = name }
}

// WithTolerance sets the relative and absolute error targets of adaptive
// methods. Zero keeps the default.
func WithTolerance(rtol, atol float64) Option {
	return func(o *options) {
		o.rtol = rtol
		o.atol = atol
	}
}

// WithStep sets the step of fixed-step methods. By default they step once
// per sample interval.
func WithStep(dt float64) Option {
	return func(o *options) { o.dt = dt }
}

// WithInitialStep overrides the estimated first step of adaptive methods.
func WithInitialStep(h float64) Option {
	return func(o *options) { o.initialStep = h }
}

// WithMinStep sets the step size below which an adaptive integration
// gives up. By default the floor is a few ulps of the current time.
func WithMinStep(h float64) Option {
	return func(o *options) { o.minStep = h }
}

// WithMaxSteps bounds the number of attempted steps, accepted or not.
func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
