// Package pipeline runs one scoring pass: config validation, concurrent
// per-company scoring, then the aggregation stages that need the full set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sawpanic/techrun/internal/catalyst"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/gates"
	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/moat"
	"github.com/sawpanic/techrun/internal/scoring"
	"github.com/sawpanic/techrun/internal/secondorder"
	"github.com/sawpanic/techrun/internal/signals"
)

// Stage names, in execution order
const (
	StageScore       = "score"
	StageSecondOrder = "second_order"
	StageSignals     = "signals"
	StageGates       = "gates"
)

// DefaultWorkers bounds the per-company fan-out when Input.Workers is unset
const DefaultWorkers = 8

// ErrDuplicateCompany is returned when two input records share an id
var ErrDuplicateCompany = errors.New("duplicate company id")

// Input is everything a run needs, loaded in memory before it starts
type Input struct {
	Companies   []models.Company
	Graph       *secondorder.Graph // nil means no second-order analysis
	Bottlenecks []models.EmergingBottleneck
	AsOf        time.Time
	Workers     int
}

// Summary is the headline view of a run
type Summary struct {
	Companies       int                           `json:"companies"`
	Signals         int                           `json:"signals_generated"`
	HighConviction  int                           `json:"high_conviction"`
	AverageMomentum float64                       `json:"average_momentum"`
	Recommendations map[models.Recommendation]int `json:"recommendations"`
	Plays           int                           `json:"second_order_plays"`
	Warnings        int                           `json:"warnings"`
}

// Result is the complete output of one run. Every collection is non-nil.
type Result struct {
	RunID          string                          `json:"run_id"`
	AsOf           time.Time                       `json:"as_of"`
	Momentum       map[string]models.MomentumScore `json:"momentum"`
	Moat           map[string]models.MoatScore     `json:"moat"`
	Catalysts      map[string][]models.Catalyst    `json:"catalysts"`
	Signals        []models.TradeSignal            `json:"signals"`
	Plays          []models.SecondOrderPlay        `json:"second_order_plays"`
	Bottlenecks    []models.EmergingBottleneck     `json:"bottlenecks"`
	Warnings       []models.Warning                `json:"warnings"`
	Summary        Summary                         `json:"summary"`
	Gates          *gates.GateReport               `json:"gates"`
	StageDurations map[string]time.Duration        `json:"stage_durations"`
}

// Observer receives stage timings; the metrics registry implements it
type Observer interface {
	ObserveStage(stage string, d time.Duration)
}

// Runner executes runs against one immutable configuration
type Runner struct {
	cfg      config.PipelineConfig
	observer Observer
}

// NewRunner validates cfg and binds it. Validation failure is fatal.
func NewRunner(cfg config.PipelineConfig, observer Observer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	return &Runner{cfg: cfg, observer: observer}, nil
}

// Run validates cfg and executes a single run
func Run(ctx context.Context, cfg config.PipelineConfig, in Input) (*Result, error) {
	r, err := NewRunner(cfg, nil)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, in)
}

// slot is the private output of one company's scoring worker
type slot struct {
	momentum  models.MomentumScore
	moat      models.MoatScore
	catalysts []models.Catalyst
	warnings  []models.Warning
}

// run carries state between stages
type run struct {
	in      Input
	slots   []slot
	sectors map[string]models.Sector
	result  *Result
}

// Run executes the stages in order. The result is either complete or nil
// with an error; a partially populated result is never returned.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	startTime := time.Now()
	if in.AsOf.IsZero() {
		return nil, errors.New("as-of time is required")
	}

	sectors := make(map[string]models.Sector, len(in.Companies))
	for _, c := range in.Companies {
		if _, dup := sectors[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCompany, c.ID)
		}
		sectors[c.ID] = c.Sector
	}

	bottlenecks := append([]models.EmergingBottleneck{}, in.Bottlenecks...)
	state := &run{
		in:      in,
		slots:   make([]slot, len(in.Companies)),
		sectors: sectors,
		result: &Result{
			RunID:          uuid.NewString(),
			AsOf:           in.AsOf.UTC(),
			Momentum:       make(map[string]models.MomentumScore, len(in.Companies)),
			Moat:           make(map[string]models.MoatScore, len(in.Companies)),
			Catalysts:      make(map[string][]models.Catalyst, len(in.Companies)),
			Signals:        []models.TradeSignal{},
			Plays:          []models.SecondOrderPlay{},
			Bottlenecks:    bottlenecks,
			Warnings:       []models.Warning{},
			StageDurations: make(map[string]time.Duration, 4),
		},
	}

	log.Info().
		Str("run_id", state.result.RunID).
		Int("companies", len(in.Companies)).
		Time("as_of", state.result.AsOf).
		Msg("Starting pipeline run")

	steps := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StageScore, r.scoreStep},
		{StageSecondOrder, r.secondOrderStep},
		{StageSignals, r.signalsStep},
		{StageGates, r.gatesStep},
	}

	for _, step := range steps {
		stepStart := time.Now()
		err := step.fn(ctx, state)
		d := time.Since(stepStart)
		state.result.StageDurations[step.name] = d
		if r.observer != nil {
			r.observer.ObserveStage(step.name, d)
		}
		if err != nil {
			log.Error().Str("step", step.name).Err(err).Dur("step_duration", d).Msg("Pipeline step failed")
			return nil, fmt.Errorf("pipeline failed at step %s: %w", step.name, err)
		}
		log.Debug().Str("step", step.name).Dur("duration", d).Msg("Pipeline step completed")
	}

	state.result.Summary = summarize(state.result, len(in.Companies))

	log.Info().
		Str("run_id", state.result.RunID).
		Int("signals", state.result.Summary.Signals).
		Int("high_conviction", state.result.Summary.HighConviction).
		Int("plays", state.result.Summary.Plays).
		Int("warnings", state.result.Summary.Warnings).
		Dur("total_duration", time.Since(startTime)).
		Msg("Pipeline run completed")

	return state.result, nil
}

// scoreStep fans momentum, moat and catalyst scoring out over the companies.
// Each worker writes only its own slot; Wait is the barrier.
func (r *Runner) scoreStep(ctx context.Context, st *run) error {
	momentum := scoring.NewScorer(r.cfg)
	moats := moat.NewScorer(r.cfg)
	predictor := catalyst.NewPredictor(r.cfg, st.in.AsOf)

	workers := st.in.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range st.in.Companies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := st.in.Companies[i]
			out := &st.slots[i]
			out.momentum = momentum.Score(c)
			out.moat, out.warnings = moats.Score(c)
			out.catalysts = predictor.Predict(c)
			for _, field := range c.RangeIssues() {
				out.warnings = append(out.warnings, models.Warning{
					CompanyID: c.ID,
					Kind:      models.WarnInvalidRange,
					Detail:    field + " out of range, clamped",
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res := st.result
	for i, c := range st.in.Companies {
		s := st.slots[i]
		res.Momentum[c.ID] = s.momentum
		res.Moat[c.ID] = s.moat
		if s.catalysts == nil {
			s.catalysts = []models.Catalyst{}
		}
		res.Catalysts[c.ID] = s.catalysts
		res.Warnings = append(res.Warnings, s.warnings...)
	}

	sortWarnings(res.Warnings)
	for _, w := range res.Warnings {
		log.Warn().Str("company_id", w.CompanyID).Str("kind", string(w.Kind)).Msg(w.Detail)
	}
	return nil
}

func (r *Runner) secondOrderStep(_ context.Context, st *run) error {
	if st.in.Graph == nil {
		return nil
	}
	scores := make([]models.MomentumScore, 0, len(st.slots))
	for _, s := range st.slots {
		scores = append(scores, s.momentum)
	}
	st.result.Plays = secondorder.NewEngine(r.cfg).FindPlays(scores, st.in.Graph, st.sectors)
	return nil
}

func (r *Runner) signalsStep(_ context.Context, st *run) error {
	gen := signals.NewGenerator(r.cfg, st.in.AsOf)
	st.result.Signals = gen.Generate(signals.Input{
		Companies: st.in.Companies,
		Momentum:  st.result.Momentum,
		Moat:      st.result.Moat,
		Catalysts: st.result.Catalysts,
	})
	return nil
}

func (r *Runner) gatesStep(_ context.Context, st *run) error {
	st.result.Signals, st.result.Gates = gates.NewRiskGate(r.cfg.RiskLimits).Evaluate(st.result.Signals)
	return nil
}

func summarize(res *Result, companies int) Summary {
	s := Summary{
		Companies:       companies,
		Signals:         len(res.Signals),
		Recommendations: make(map[models.Recommendation]int),
		Plays:           len(res.Plays),
		Warnings:        len(res.Warnings),
	}
	var total float64
	for _, sig := range res.Signals {
		if sig.Conviction >= signals.HighConviction {
			s.HighConviction++
		}
		s.Recommendations[sig.Recommendation]++
		total += sig.Momentum
	}
	if len(res.Signals) > 0 {
		s.AverageMomentum = models.Round(total/float64(len(res.Signals)), 2)
	}
	return s
}

func sortWarnings(ws []models.Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].CompanyID != ws[j].CompanyID {
			return ws[i].CompanyID < ws[j].CompanyID
		}
		if ws[i].Kind != ws[j].Kind {
			return ws[i].Kind < ws[j].Kind
		}
		return strings.Compare(ws[i].Detail, ws[j].Detail) < 0
	})
}
