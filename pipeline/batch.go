package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/soypat/livecad/helpers/matter"
	"github.com/soypat/livecad/recipe"
	"github.com/soypat/livecad/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Job describes one part of a batch export.
type Job struct {
	Name string `yaml:"name"`
	// Recipe is a builtin recipe name or a recipe source path.
	// Empty selects the hexbolt builtin.
	Recipe string `yaml:"recipe,omitempty"`
	// Preset is an ISO thread name such as "M8x1.25" whose dimensions
	// are applied before Parameters.
	Preset     string             `yaml:"preset,omitempty"`
	Parameters map[string]float64 `yaml:"parameters,omitempty"`
	Offset     float64            `yaml:"offset,omitempty"`
	Weld       float64            `yaml:"weld,omitempty"`
	Material   string             `yaml:"material,omitempty"`
	Output     string             `yaml:"output"`
	Format     string             `yaml:"format,omitempty"`
}

type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads a YAML batch file of the form
//
//	jobs:
//	  - name: m8
//	    preset: M8x1.25
//	    parameters: {length: 30}
//	    output: m8.stl
//
// Relative recipe and output paths are resolved against the file's directory.
func LoadJobs(path string) ([]Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	var f jobFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range f.Jobs {
		j := &f.Jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("job%d", i)
		}
		if j.Output == "" {
			return nil, fmt.Errorf("job %q: missing output", j.Name)
		}
		j.Output = relTo(dir, j.Output)
		if _, builtin := recipeIsBuiltin(j.Recipe); !builtin {
			j.Recipe = relTo(dir, j.Recipe)
		}
	}
	return f.Jobs, nil
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func recipeIsBuiltin(ref string) (string, bool) {
	if ref == "" {
		return "hexbolt", true
	}
	for _, name := range recipe.Builtins() {
		if name == ref {
			return ref, true
		}
	}
	return ref, false
}

// JobResult reports the outcome of a single batch job.
type JobResult struct {
	Job     Job
	Faces   int
	Elapsed time.Duration
	Err     error
}

// RunBatch runs jobs with at most limit running concurrently. A limit of
// zero or less uses GOMAXPROCS. A failing job does not stop the others;
// results are returned in job order along with the joined job errors.
// Cancelling ctx skips jobs not yet started.
func RunBatch(ctx context.Context, jobs []Job, limit int, log *zap.Logger) ([]JobResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			faces, err := runJob(job)
			results[i].Faces = faces
			results[i].Elapsed = time.Since(start)
			results[i].Err = err
			if err != nil {
				log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
			} else {
				log.Info("job done", zap.String("job", job.Name),
					zap.String("output", job.Output),
					zap.Int("faces", faces),
					zap.Duration("elapsed", results[i].Elapsed))
			}
			return nil
		})
	}
	g.Wait()
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("job %q: %w", r.Job.Name, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func runJob(job Job) (int, error) {
	gen, err := recipe.Open(job.Recipe)
	if err != nil {
		return 0, err
	}
	overrides := make(map[string]float64)
	if job.Preset != "" {
		iso, err := thread.LookupISO(job.Preset)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", livecad.ErrParameterValue, err)
		}
		for k, v := range iso.Overrides() {
			overrides[k] = v
		}
	}
	for k, v := range job.Parameters {
		overrides[k] = v
	}
	values, err := livecad.Resolve(gen.Parameters(), overrides)
	if err != nil {
		return 0, err
	}
	material, err := matter.Lookup(job.Material)
	if err != nil {
		return 0, err
	}
	format, err := render.ParseFormat(job.Format)
	if err != nil {
		return 0, err
	}
	m, err := Build(gen, values, Post{Offset: job.Offset, Weld: job.Weld, Material: material})
	if err != nil {
		return 0, err
	}
	if err := render.CreateSTL(job.Output, m, format); err != nil {
		return 0, err
	}
	return m.NumFaces(), nil
}
