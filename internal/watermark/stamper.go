package watermark

import (
	"fmt"

	"renderlab/internal/studio"
)

// Stamper adapts Stamp to the reconciler's interface, resolving the logo key
// through the provided loader.
type Stamper struct {
	Load func(key string) ([]byte, error)
}

var _ studio.Watermarker = (*Stamper)(nil)

func (s *Stamper) Apply(data []byte, mime string, cfg studio.WatermarkConfig) ([]byte, string, error) {
	if !cfg.Enabled || cfg.URL == "" {
		return data, mime, nil
	}
	if s.Load == nil {
		return nil, "", fmt.Errorf("watermark: no logo loader configured")
	}
	logo, err := s.Load(cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("watermark: load logo %q: %w", cfg.URL, err)
	}
	return Stamp(data, mime, logo, Options{
		Position: string(cfg.Position),
		Opacity:  cfg.Opacity,
		Scale:    cfg.Scale,
	})
}
