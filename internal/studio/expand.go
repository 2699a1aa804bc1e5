package studio

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// RenderJob is one discrete generation request. Jobs are created at batch
// submit time, consumed exactly once by the dispatcher and discarded after
// reconciliation; only their outcome is persisted (under the same id as the
// matching history entry).
type RenderJob struct {
	ID           string      `json:"id"`
	Angle        ViewAngle   `json:"angle"`
	Device       Device      `json:"device"`
	Lens         FocalLength `json:"lens"`
	BatchSeed    int32       `json:"batch_seed"`
	ColorProfile string      `json:"color_profile,omitempty"`
	Prompt       string      `json:"prompt"`
	IsVideo      bool        `json:"is_video"`
}

// newBatchSeed is swapped out by tests that need reproducible batches.
var newBatchSeed = func() int32 {
	return rand.Int32()
}

// Expand enumerates the batch for a settings snapshot. Video settings yield
// exactly one job. Image settings yield the Cartesian product over
// device x angle x lens x repetition, in that nesting order, so that the
// result ordering is deterministic and job index i always corresponds to
// history entry i.
//
// One seed and one color profile are generated per batch and attached to
// every job; backend-side stochastic variation is then the only difference
// between jobs beyond the explicit axes.
//
// The caller is expected to have normalized the settings; Expand normalizes
// again so that a violated never-empty-axis invariant degrades to a
// single-job default instead of a zero-job batch.
func Expand(s Settings) []RenderJob {
	s.Normalize()

	seed := newBatchSeed()
	profile := BuildColorProfile(s)

	if s.Model.IsVideo() {
		return []RenderJob{{
			ID:           uuid.NewString(),
			Angle:        s.ViewAngles[0],
			Device:       s.Devices[0],
			Lens:         s.FocalLengths[0],
			BatchSeed:    seed,
			ColorProfile: profile,
			Prompt:       CompileVideo(s, profile),
			IsVideo:      true,
		}}
	}

	jobs := make([]RenderJob, 0, BatchSize(s))
	for _, device := range s.Devices {
		for _, angle := range s.ViewAngles {
			for _, lens := range s.FocalLengths {
				for i := 0; i < s.OutputCount; i++ {
					jobs = append(jobs, RenderJob{
						ID:           uuid.NewString(),
						Angle:        angle,
						Device:       device,
						Lens:         lens,
						BatchSeed:    seed,
						ColorProfile: profile,
						Prompt:       Compile(s, angle, device, lens, profile),
					})
				}
			}
		}
	}
	return jobs
}
