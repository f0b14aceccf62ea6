// Package orchestrator implements antoine's batch orchestrator
// (SPEC_FULL.md §4.6): process many CompanyInputs concurrently, bounded
// by a worker semaphore and a reusable pipeline-instance pool, isolating
// per-company failures from the rest of the batch.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antoinebi/antoine/internal/company"
	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/progress"
)

// Options configures one batch run.
type Options struct {
	MaxConcurrentCompanies int
	EnableResourcePooling  bool
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrentCompanies <= 0 {
		o.MaxConcurrentCompanies = 3
	}
	return o
}

// ProgressCallback reports cumulative batch progress as companies finish.
type ProgressCallback func(processedCount int, message, companyName string)

// Orchestrator runs the batch layer over a factory that constructs fresh
// per-company pipelines.
type Orchestrator struct {
	pool        *pipelinePool
	sink        *progress.Sink
	opts        Options
	companyOpts company.Options
}

// New creates an Orchestrator. factory constructs a new company.Pipeline;
// it is called by the instance pool on demand.
func New(factory func() *company.Pipeline, sink *progress.Sink, opts Options, companyOpts company.Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		pool:        newPipelinePool(opts.MaxConcurrentCompanies, factory),
		sink:        sink,
		opts:        opts,
		companyOpts: companyOpts,
	}
}

// Run processes inputs concurrently under the configured semaphore,
// returning an aggregated BatchResult. It never returns an error: every
// per-company failure is isolated into that company's record or into
// Errors, per spec §4.6.
func (o *Orchestrator) Run(ctx context.Context, inputs []model.CompanyInput, onProgress ProgressCallback) model.BatchResult {
	start := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrentCompanies)

	var mu sync.Mutex
	var records []*model.CompanyRecord
	errs := make(map[string]string)
	processed := 0

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			record := o.runOne(gCtx, input)

			mu.Lock()
			if record != nil {
				records = append(records, record)
			} else {
				errs[input.Name] = "company pipeline panicked"
			}
			processed++
			count := processed
			mu.Unlock()

			if onProgress != nil {
				onProgress(count, "company processed", input.Name)
			}
			return nil
		})
	}
	_ = g.Wait()

	return model.Finalize(start, time.Now(), records, errs)
}

// runOne executes the per-company pipeline under the instance pool,
// recovering from any panic so one company's failure can never take down
// the batch (spec §4.6 step 4).
func (o *Orchestrator) runOne(ctx context.Context, input model.CompanyInput) (record *model.CompanyRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("orchestrator: company pipeline panicked",
				zap.String("company", input.Name),
				zap.Any("recovered", r),
			)
			record = nil
		}
	}()

	normalized, err := input.Normalize()
	if err != nil {
		rec := model.NewCompanyRecord(uuid.NewString(), input, time.Now())
		rec.MarkFailed(err.Error(), time.Now())
		return rec
	}

	rec := model.NewCompanyRecord(uuid.NewString(), normalized, time.Now())

	instance := o.pool.acquire()
	defer o.pool.release(instance)

	o.recordJobEvent(rec.ID, "company", progress.StatusStarted, "company pipeline started")
	instance.Run(ctx, rec, o.companyOpts, func(jobID string, phase progress.Phase, message string) {
		o.recordJobEvent(jobID, phase, progress.StatusStarted, message)
	})

	finalStatus := progress.StatusComplete
	if rec.ScrapeStatus != model.ScrapeStatusSuccess {
		finalStatus = progress.StatusFailed
	}
	o.recordJobEvent(rec.ID, "company", finalStatus, "company pipeline finished")

	return rec
}

func (o *Orchestrator) recordJobEvent(jobID string, phase progress.Phase, status progress.Status, message string) {
	if o.sink == nil {
		return
	}
	o.sink.Record(jobID, phase, status, message, time.Now())
}

// Shutdown drains the pipeline-instance pool. Run already blocks until
// every worker finishes, so this only needs to release pooled instances.
func (o *Orchestrator) Shutdown() {
	o.pool.drain()
}
