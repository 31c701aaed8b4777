package runner

// The runner sweeps a list of parameter sets, one scenario at a time,
// delegating each to an Executor and folding the verdicts into a Report.

import (
	"context"
	"fmt"
	"time"

	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/scenario"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TRACER = "netbench/runner"

type (
	// Request is everything an Executor needs to run one scenario.
	Request struct {
		Alias       string
		Category    string
		Scaffolding config.Scaffolding
		ServerArgs  string
		ClientArgs  string
		// NetworkTest is always set, the server and client talk over the network
		NetworkTest bool
	}

	// Result of a single scenario, as reported by an Executor.
	Result struct {
		Passed bool
		// Diagnostic is optional free-form information about the outcome
		Diagnostic string
	}

	// Executor runs one scenario to completion. Any failure of the
	// scenario itself must be reported as a Result that did not pass;
	// a returned error is also treated as a failed scenario.
	Executor interface {
		Execute(ctx context.Context, req *Request) (*Result, error)
	}

	// ExecutorFunc adapts a plain function to an Executor.
	ExecutorFunc func(ctx context.Context, req *Request) (*Result, error)
)

func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Result, error) {
	return f(ctx, req)
}

type Runner struct {
	executor    Executor
	scaffolding config.Scaffolding
	aggregation string
	reducer     Reducer
	onVerdict   func(Verdict)
}

type Option func(*Runner)

// WithReducer sets how verdicts are folded. Defaults to All.
func WithReducer(name string, reducer Reducer) Option {
	return func(r *Runner) {
		r.aggregation = name
		r.reducer = reducer
	}
}

// WithVerdictCallback registers a function called after every scenario.
func WithVerdictCallback(f func(Verdict)) Option {
	return func(r *Runner) {
		r.onVerdict = f
	}
}

func New(executor Executor, scaffolding config.Scaffolding, opts ...Option) *Runner {
	r := &Runner{
		executor:    executor,
		scaffolding: scaffolding,
		aggregation: AGGREGATION_ALL,
		reducer:     All,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs every parameter set in order, and returns the report.
// Scenarios never abort the sweep. If ctx is done, the remaining scenarios
// are skipped, and the partial report is returned with the context error.
func (r *Runner) Execute(ctx context.Context, sets []scenario.ParameterSet) (*Report, error) {
	report := &Report{
		ID:          xid.New().String(),
		StartedAt:   time.Now(),
		Aggregation: r.aggregation,
		Verdicts:    make([]Verdict, 0, len(sets)),
	}

	log := log.Ctx(ctx).With().Str("run", report.ID).Logger()
	ctx = log.WithContext(ctx)

	var err error
	for _, params := range sets {
		if err = ctx.Err(); err != nil {
			log.Warn().Err(err).Int("skipped", len(sets)-len(report.Verdicts)).Msg("sweep interrupted")
			break
		}

		verdict := r.run(ctx, params)
		report.Verdicts = append(report.Verdicts, verdict)

		if r.onVerdict != nil {
			r.onVerdict(verdict)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	report.Passed = r.reducer(report.Verdicts)

	log.Info().
		Bool("passed", report.Passed).
		Int("scenarios", len(report.Verdicts)).
		Str("aggregation", report.Aggregation).
		Dur("duration", report.Duration).
		Msg("sweep finished")

	return report, err
}

func (r *Runner) run(ctx context.Context, params scenario.ParameterSet) Verdict {
	cfg := scenario.Build(params, r.scaffolding.ServerIP)

	ctx, span := otel.Tracer(TRACER).Start(ctx, cfg.Alias)
	defer span.End()
	span.SetAttributes(
		attribute.String("scenario.label", params.Label),
		attribute.Int("scenario.nrounds", params.NRounds),
		attribute.Int("scenario.bufsize", params.BufSize),
		attribute.String("scenario.server_args", cfg.ServerArgs),
		attribute.String("scenario.client_args", cfg.ClientArgs),
	)

	log := log.Ctx(ctx).With().Str("scenario", cfg.Alias).Str("label", params.Label).Logger()
	ctx = log.WithContext(ctx)

	log.Info().Str("server", cfg.ServerArgs).Str("client", cfg.ClientArgs).Msg("running scenario")

	req := &Request{
		Alias:       cfg.Alias,
		Category:    scenario.TEST_NAME,
		Scaffolding: r.scaffolding,
		ServerArgs:  cfg.ServerArgs,
		ClientArgs:  cfg.ClientArgs,
		NetworkTest: true,
	}

	start := time.Now()
	result, err := r.executor.Execute(ctx, req)

	verdict := Verdict{
		Label:    params.Label,
		Alias:    cfg.Alias,
		NRounds:  params.NRounds,
		BufSize:  params.BufSize,
		Duration: time.Since(start),
	}

	switch {
	case err != nil:
		verdict.Diagnostic = err.Error()
		span.RecordError(err)
		log.Error().Err(err).Msg("scenario could not be executed")
	case result == nil:
		verdict.Diagnostic = fmt.Sprintf("no result for %s", cfg.Alias)
		log.Error().Msg("scenario returned no result")
	default:
		verdict.Passed = result.Passed
		verdict.Diagnostic = result.Diagnostic
	}

	span.SetAttributes(attribute.Bool("scenario.passed", verdict.Passed))
	if !verdict.Passed {
		span.SetStatus(codes.Error, verdict.Diagnostic)
		log.Warn().Dur("duration", verdict.Duration).Str("diagnostic", verdict.Diagnostic).Msg("scenario failed")
	} else {
		log.Info().Dur("duration", verdict.Duration).Msg("scenario passed")
	}

	return verdict
}
