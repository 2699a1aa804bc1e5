package studio

import "strings"

// BuildColorProfile derives the shared white-balance and palette descriptor
// for one batch. The profile text is injected verbatim into every compiled
// prompt of the batch, which is what keeps a multi-angle, multi-lens batch
// visually coherent without any state shared on the backend side.
//
// Returns the empty string when color sync is disabled.
func BuildColorProfile(s Settings) string {
	if !s.ColorSync {
		return ""
	}

	var b strings.Builder
	b.WriteString("COLOR CONSISTENCY LOCK: ")

	switch {
	case s.TimeOfDay == TimeGoldenHour,
		s.Lighting == LightingBacklight,
		s.Lighting == LightingNaturalBacklight:
		b.WriteString("Warm white balance (~3500K). Golden highlights, amber cast in the shadows.")
	case s.TimeOfDay == TimeNight, nightScene(s.Scene):
		b.WriteString("Cool white balance (~4000K). Blue-leaning ambient light with artificial light sources dominating.")
	default:
		b.WriteString("Neutral daylight white balance (~5600K). Clean whites, no color cast.")
	}

	switch s.Filter {
	case FilterCinematic:
		b.WriteString(" Palette: teal shadows against orange highlights, high contrast, rich blacks.")
	case FilterClean:
		b.WriteString(" Palette: high-key neutral whites, bright exposure, low contrast.")
	default:
		b.WriteString(" Palette: colorimetrically accurate, true-to-life reproduction.")
	}

	b.WriteString(" Every frame in this series must share this exact grade.")
	return b.String()
}

func nightScene(scene Scene) bool {
	switch scene {
	case SceneCityNeon, SceneNightLight, SceneStudioDark:
		return true
	}
	return false
}
