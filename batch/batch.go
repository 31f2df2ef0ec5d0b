package batch

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/errors"
	"github.com/bioimagesuiteweb/bisresample/module"
	"github.com/bioimagesuiteweb/bisresample/resample"
)

// Job is one input file to resample.
type Job struct {
	Input  string
	Output string
	// Values are raw parameter strings keyed by varname.
	Values map[string]string
}

// Result is the outcome of one Job.
type Result struct {
	ID      string
	Job     Job
	OK      bool
	Err     error
	Elapsed time.Duration
	Output  bisobj.Summary
}

// Runner resamples jobs with bounded parallelism.
type Runner struct {
	Library resample.Library
	// Workers bounds concurrent jobs; values below 1 mean 1.
	Workers int
	Logger  *zap.Logger
	// OnResult, when set, is called once per finished job. Calls are
	// serialized.
	OnResult func(Result)

	mu sync.Mutex
}

// Jobs builds one job per input with outputs in outDir.
func Jobs(inputs []string, outDir string, vals map[string]string) []Job {
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, Job{Input: in, Output: OutputName(in, outDir), Values: vals})
	}
	return jobs
}

// Run processes jobs and returns their results in input order. A failed job
// does not stop the others; a cancelled context marks the remaining jobs
// with the context's error.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			res := r.runOne(ctx, job)
			results[i] = res
			r.report(res)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunOne processes a single job.
func (r *Runner) RunOne(ctx context.Context, job Job) Result {
	res := r.runOne(ctx, job)
	r.report(res)
	return res
}

func (r *Runner) runOne(ctx context.Context, job Job) Result {
	res := Result{ID: uuid.NewString(), Job: job}
	start := time.Now()

	log := r.logger().With(zap.String("id", res.ID), zap.String("input", job.Input))

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	out, err := r.process(ctx, job)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		log.Warn("job failed", zap.Error(err), zap.Duration("elapsed", res.Elapsed))
		return res
	}
	res.OK = true
	res.Output = out.Summary()
	log.Info("job done",
		zap.String("output", job.Output),
		zap.Stringer("image", res.Output),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

func (r *Runner) process(ctx context.Context, job Job) (*bisobj.Image, error) {
	data, err := os.ReadFile(job.Input)
	if err != nil {
		return nil, errors.Load("read input", err)
	}
	img, err := bisobj.ParseImage(data)
	if err != nil {
		return nil, err
	}

	m := resample.New(r.Library)
	ok, err := module.Execute(ctx, m, map[string]*bisobj.Image{"input": img}, job.Values)
	if err != nil {
		return nil, err
	}
	out := m.Outputs["output"]
	if !ok || out == nil {
		return nil, errors.CallFailed("resampleImage", "algorithm failed")
	}

	if err := WriteFile(job.Output, out.Bytes()); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Runner) report(res Result) {
	if r.OnResult == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OnResult(res)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
