package studio

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"renderlab/internal/providers/genai"
)

// ImageGenerator is the slice of the backend client the dispatcher needs for
// still images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageResult, error)
}

// VideoGenerator is the slice of the backend client the dispatcher needs for
// video: a submit that returns an operation name and a poll until done.
type VideoGenerator interface {
	SubmitVideo(ctx context.Context, req genai.VideoRequest) (string, error)
	PollVideo(ctx context.Context, model, operationName string) (*genai.VideoResult, bool, error)
}

var (
	_ ImageGenerator = (*genai.Client)(nil)
	_ VideoGenerator = (*genai.Client)(nil)
)

const (
	defaultMaxRetries  = 5
	defaultBaseDelay   = time.Second
	defaultMaxParallel = 4
	defaultJitterSpan  = 2 * time.Second

	videoPollInterval = 5 * time.Second
	videoPollTimeout  = 10 * time.Minute

	// Veo renders are always requested at full quality; the HighRes flag
	// belongs to the pro image tier.
	videoResolution = "1080p"

	// Compositing must stay faithful to the reference layer; standalone
	// renders want variety.
	compositingTemperature = 0.2
	standaloneTemperature  = 0.9
)

// JobOutcome is the terminal result of one render job. Outcomes are written
// into a slot per job, so outcome i always belongs to job i regardless of
// completion order.
type JobOutcome struct {
	Job          RenderJob
	Data         []byte
	MIME         string
	InputTokens  int
	OutputTokens int
	Attempts     int
	Err          error
}

// Succeeded reports whether the job produced an artifact.
func (o JobOutcome) Succeeded() bool {
	return o.Err == nil && len(o.Data) > 0
}

// Dispatcher fans a batch of render jobs out to the generation backend with
// per-job start jitter and bounded retries on transient failures. One job
// failing never cancels its siblings.
type Dispatcher struct {
	images ImageGenerator
	videos VideoGenerator
	logger zerolog.Logger

	maxRetries  int
	baseDelay   time.Duration
	maxParallel int

	// Injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(span time.Duration) time.Duration
}

func NewDispatcher(images ImageGenerator, videos VideoGenerator, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		images:      images,
		videos:      videos,
		logger:      logger,
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
		maxParallel: defaultMaxParallel,
		sleep:       sleepCtx,
		jitter: func(span time.Duration) time.Duration {
			if span <= 0 {
				return 0
			}
			return time.Duration(rand.Int64N(int64(span)))
		},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DispatchInput carries the batch-wide payloads every job shares.
type DispatchInput struct {
	Settings  Settings
	Jobs      []RenderJob
	Product   genai.Blob
	Reference *genai.Blob
}

// Dispatch runs every job to completion and returns one outcome per job, in
// job order. The returned slice always has len(input.Jobs) elements.
func (d *Dispatcher) Dispatch(ctx context.Context, input DispatchInput) []JobOutcome {
	outcomes := make([]JobOutcome, len(input.Jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(d.maxParallel)
	for i := range input.Jobs {
		i := i
		eg.Go(func() error {
			outcomes[i] = d.runJob(egCtx, input, input.Jobs[i])
			return nil
		})
	}
	// Worker funcs never return errors; failures live in the outcome slots.
	_ = eg.Wait()
	return outcomes
}

func (d *Dispatcher) runJob(ctx context.Context, input DispatchInput, job RenderJob) JobOutcome {
	outcome := JobOutcome{Job: job}

	// Spread the burst so sibling jobs do not hit the backend in lockstep.
	if err := d.sleep(ctx, d.jitter(defaultJitterSpan)); err != nil {
		outcome.Err = err
		return outcome
	}

	for attempt := 1; attempt <= 1+d.maxRetries; attempt++ {
		outcome.Attempts = attempt
		err := d.attempt(ctx, input, job, &outcome)
		if err == nil {
			return outcome
		}
		outcome.Err = err

		if !genai.IsTransient(err) || attempt > d.maxRetries {
			return outcome
		}
		delay := d.baseDelay<<(attempt-1) + d.jitter(d.baseDelay)
		d.logger.Warn().
			Str("job_id", job.ID).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("dispatch: transient failure, retrying")
		if serr := d.sleep(ctx, delay); serr != nil {
			outcome.Err = serr
			return outcome
		}
	}
	return outcome
}

func (d *Dispatcher) attempt(ctx context.Context, input DispatchInput, job RenderJob, outcome *JobOutcome) error {
	if job.IsVideo {
		return d.attemptVideo(ctx, input, job, outcome)
	}
	return d.attemptImage(ctx, input, job, outcome)
}

func (d *Dispatcher) attemptImage(ctx context.Context, input DispatchInput, job RenderJob, outcome *JobOutcome) error {
	s := input.Settings
	temperature := standaloneTemperature
	if s.CompositingMode() {
		temperature = compositingTemperature
	}
	imageSize := ""
	if s.Model == ModelProImage && s.HighRes {
		imageSize = "4K"
	}
	seed := job.BatchSeed

	result, err := d.images.GenerateImage(ctx, genai.ImageRequest{
		Model:       string(s.Model),
		Prompt:      job.Prompt,
		Image:       input.Product,
		Reference:   input.Reference,
		AspectRatio: string(s.AspectRatio),
		ImageSize:   imageSize,
		Seed:        &seed,
		Temperature: temperature,
		RequestID:   job.ID,
	})
	if err != nil {
		return err
	}
	outcome.Data = result.Data
	outcome.MIME = result.MIME
	outcome.InputTokens = result.Usage.InputTokens
	outcome.OutputTokens = result.Usage.OutputTokens
	return nil
}

func (d *Dispatcher) attemptVideo(ctx context.Context, input DispatchInput, job RenderJob, outcome *JobOutcome) error {
	s := input.Settings
	operation, err := d.videos.SubmitVideo(ctx, genai.VideoRequest{
		Model:           string(s.Model),
		Prompt:          job.Prompt,
		Image:           input.Product,
		AspectRatio:     string(s.AspectRatio),
		Resolution:      videoResolution,
		DurationSeconds: s.VideoDuration,
		RequestID:       job.ID,
	})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(videoPollTimeout)
	for {
		if err := d.sleep(ctx, videoPollInterval); err != nil {
			return err
		}
		result, done, err := d.videos.PollVideo(ctx, string(s.Model), operation)
		if err != nil {
			return err
		}
		if done {
			outcome.Data = result.Data
			outcome.MIME = result.MIME
			// The long-running API reports no usage metadata, so bill the
			// modeled figures for the requested duration.
			outcome.InputTokens = estVideoInputTokens
			outcome.OutputTokens = s.VideoDuration * estVideoOutputTokensPerSec
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("video generation timed out after %s (operation %s)", videoPollTimeout, operation)
		}
	}
}
