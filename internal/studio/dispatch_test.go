package studio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"renderlab/internal/providers/genai"
)

type stubImageGenerator struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(req genai.ImageRequest, attempt int) (*genai.ImageResult, error)
}

func (g *stubImageGenerator) GenerateImage(_ context.Context, req genai.ImageRequest) (*genai.ImageResult, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	g.calls[req.RequestID]++
	attempt := g.calls[req.RequestID]
	g.mu.Unlock()
	return g.fn(req, attempt)
}

type stubVideoGenerator struct {
	submitErr error
	pollsLeft int
	result    *genai.VideoResult
	pollErr   error
	submitted []genai.VideoRequest
}

func (g *stubVideoGenerator) SubmitVideo(_ context.Context, req genai.VideoRequest) (string, error) {
	g.submitted = append(g.submitted, req)
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return "operations/test", nil
}

func (g *stubVideoGenerator) PollVideo(context.Context, string, string) (*genai.VideoResult, bool, error) {
	if g.pollErr != nil {
		return nil, false, g.pollErr
	}
	if g.pollsLeft > 0 {
		g.pollsLeft--
		return nil, false, nil
	}
	return g.result, true, nil
}

func newTestDispatcher(images ImageGenerator, videos VideoGenerator) *Dispatcher {
	d := NewDispatcher(images, videos, zerolog.Nop())
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	d.jitter = func(time.Duration) time.Duration { return 0 }
	return d
}

func imageSettings() Settings {
	s := DefaultSettings()
	s.Devices = []Device{DeviceProfessional, DeviceMobile}
	s.ViewAngles = []ViewAngle{AngleEyeLevel}
	s.FocalLengths = []FocalLength{Lens50mm}
	return s
}

func TestDispatchTransientErrorExhaustsRetries(t *testing.T) {
	overloaded := &genai.APIError{StatusCode: 503, Message: "The model is overloaded."}
	images := &stubImageGenerator{fn: func(genai.ImageRequest, int) (*genai.ImageResult, error) {
		return nil, overloaded
	}}
	d := newTestDispatcher(images, &stubVideoGenerator{})

	s := DefaultSettings()
	jobs := Expand(s)
	outcomes := d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     jobs,
		Product:  genai.Blob{Data: []byte("p")},
	})

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.Succeeded() {
		t.Fatal("expected failure")
	}
	if o.Attempts != 1+defaultMaxRetries {
		t.Errorf("expected %d attempts, got %d", 1+defaultMaxRetries, o.Attempts)
	}
	if !errors.Is(o.Err, overloaded) {
		t.Errorf("expected the transient error to surface, got %v", o.Err)
	}
}

func TestDispatchTextRefusalDoesNotRetry(t *testing.T) {
	images := &stubImageGenerator{fn: func(genai.ImageRequest, int) (*genai.ImageResult, error) {
		return nil, &genai.TextResponseError{Text: "cannot comply"}
	}}
	d := newTestDispatcher(images, &stubVideoGenerator{})

	s := DefaultSettings()
	outcomes := d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     Expand(s),
		Product:  genai.Blob{Data: []byte("p")},
	})
	if outcomes[0].Attempts != 1 {
		t.Errorf("refusals must not retry, got %d attempts", outcomes[0].Attempts)
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	images := &stubImageGenerator{fn: func(req genai.ImageRequest, _ int) (*genai.ImageResult, error) {
		if req.Prompt == "" {
			t.Error("job dispatched without a prompt")
		}
		return &genai.ImageResult{
			Data:  []byte(req.RequestID),
			MIME:  "image/png",
			Usage: genai.TokenUsage{InputTokens: 1058, OutputTokens: 1024},
		}, nil
	}}
	s := imageSettings()
	jobs := Expand(s)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	// The first job fails permanently, the second must still complete.
	failID := jobs[0].ID
	inner := images.fn
	images.fn = func(req genai.ImageRequest, attempt int) (*genai.ImageResult, error) {
		if req.RequestID == failID {
			return nil, &genai.APIError{StatusCode: 400, Message: "invalid argument"}
		}
		return inner(req, attempt)
	}

	d := newTestDispatcher(images, &stubVideoGenerator{})
	outcomes := d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     jobs,
		Product:  genai.Blob{Data: []byte("p")},
	})

	if outcomes[0].Succeeded() {
		t.Error("first outcome should have failed")
	}
	if outcomes[0].Attempts != 1 {
		t.Errorf("permanent errors must not retry, got %d attempts", outcomes[0].Attempts)
	}
	if !outcomes[1].Succeeded() {
		t.Fatalf("second outcome should have succeeded: %v", outcomes[1].Err)
	}
	if string(outcomes[1].Data) != jobs[1].ID {
		t.Error("outcome slot does not match its job")
	}
	if outcomes[1].InputTokens != 1058 || outcomes[1].OutputTokens != 1024 {
		t.Errorf("usage not recorded: %+v", outcomes[1])
	}
}

func TestDispatchVideoPollsUntilDone(t *testing.T) {
	videos := &stubVideoGenerator{
		pollsLeft: 3,
		result:    &genai.VideoResult{Data: []byte("mp4"), MIME: "video/mp4"},
	}
	d := newTestDispatcher(&stubImageGenerator{fn: func(genai.ImageRequest, int) (*genai.ImageResult, error) {
		t.Error("image generator must not be called for video batches")
		return nil, nil
	}}, videos)

	s := DefaultSettings()
	s.Model = ModelVideo
	s.VideoDuration = 7
	s.Normalize()

	outcomes := d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     Expand(s),
		Product:  genai.Blob{Data: []byte("p")},
	})
	if len(outcomes) != 1 {
		t.Fatalf("video batches expand to one job, got %d", len(outcomes))
	}
	o := outcomes[0]
	if !o.Succeeded() {
		t.Fatalf("video dispatch failed: %v", o.Err)
	}
	if o.MIME != "video/mp4" {
		t.Errorf("unexpected mime %q", o.MIME)
	}
	if o.InputTokens != estVideoInputTokens || o.OutputTokens != 7*estVideoOutputTokensPerSec {
		t.Errorf("video usage should be the modeled figures, got %+v", o)
	}
}

func TestDispatchVideoAlwaysRequestsFullResolution(t *testing.T) {
	videos := &stubVideoGenerator{
		result: &genai.VideoResult{Data: []byte("mp4"), MIME: "video/mp4"},
	}
	d := newTestDispatcher(&stubImageGenerator{}, videos)

	s := DefaultSettings()
	s.Model = ModelVideo
	s.Normalize()

	d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     Expand(s),
		Product:  genai.Blob{Data: []byte("p")},
	})
	if len(videos.submitted) != 1 {
		t.Fatalf("expected 1 submit, got %d", len(videos.submitted))
	}
	if got := videos.submitted[0].Resolution; got != "1080p" {
		t.Errorf("video submitted at %q, want 1080p", got)
	}
}

func TestDispatchHighResProImageRequestsLargeOutput(t *testing.T) {
	var gotSize string
	var gotTemp float64
	images := &stubImageGenerator{fn: func(req genai.ImageRequest, _ int) (*genai.ImageResult, error) {
		gotSize = req.ImageSize
		gotTemp = req.Temperature
		return &genai.ImageResult{Data: []byte("x"), MIME: "image/png"}, nil
	}}
	d := newTestDispatcher(images, &stubVideoGenerator{})

	s := DefaultSettings()
	s.Model = ModelProImage
	s.HighRes = true
	d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     Expand(s),
		Product:  genai.Blob{Data: []byte("p")},
	})
	if gotSize != "4K" {
		t.Errorf("expected 4K image size, got %q", gotSize)
	}
	if gotTemp != standaloneTemperature {
		t.Errorf("expected standalone temperature, got %v", gotTemp)
	}

	s.ReferenceImageURL = "uploads/ref.png"
	s.KeepRefBackground = true
	d.Dispatch(context.Background(), DispatchInput{
		Settings: s,
		Jobs:     Expand(s),
		Product:  genai.Blob{Data: []byte("p")},
	})
	if gotTemp != compositingTemperature {
		t.Errorf("expected compositing temperature, got %v", gotTemp)
	}
}
