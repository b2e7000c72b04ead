package docmark

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/tsawler/docmark/markdown"
)

// Job is one document for ConvertAll.
type Job struct {
	Filename string
	Data     []byte
	Options  markdown.Options
}

// Result is the outcome of one Job. Exactly one of Markdown and Err is
// meaningful.
type Result struct {
	Filename string
	Markdown string
	Err      error
}

// ConvertAll converts jobs concurrently on a bounded worker pool and
// returns one Result per Job in the same order. Cancelling ctx stops new
// jobs from starting; their results carry ctx.Err(). Jobs already running
// are completed.
func (e *Engine) ConvertAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	p := pool.New().WithMaxGoroutines(e.workers)

	for i, job := range jobs {
		results[i].Filename = job.Filename
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Markdown, results[i].Err = e.Convert(job.Data, job.Filename, job.Options)
		})
	}
	p.Wait()

	e.logger.Debug("batch finished", "jobs", len(jobs), "workers", e.workers)
	return results
}
