package studio

import (
	"fmt"
	"strings"
)

// Compile renders the instruction payload for one job. The output is fully
// determined by its inputs; every stochastic choice (seed, angle, lens,
// device) has already been made by the expander.
//
// Two mutually exclusive modes exist. With a reference image present and the
// keep-background flag set, the compiler emits a strict compositing
// instruction and none of the optics/scene physics. In every other case it
// emits exactly one lens block, one framing block, one angle block, one scene
// block and one lighting block, in a fixed order.
func Compile(s Settings, angle ViewAngle, device Device, lens FocalLength, colorProfile string) string {
	if s.CompositingMode() {
		return compileCompositing(s)
	}

	parts := []string{
		"ROLE: Expert Commercial Photographer / Cinematographer.",
		"TASK: Place the input product into a new environment.",
		preservationText(s),
		cameraSystemText(device),
		lensText(lens, device),
		shotSizeText(s.ShotSize),
		angleText(angle),
		filterText(s.Filter),
		interactionText(device, s.Interaction, s.HumanStyle),
		sceneText(s),
		lightingText(s),
		moodText(s),
	}
	if colorProfile != "" {
		parts = append(parts, colorProfile)
	}
	parts = append(parts, "EXECUTION: Photorealistic, physically accurate lighting and shadows.")
	return joinBlocks(parts)
}

// CompileVideo wraps the standalone prompt with the motion, duration and
// audio instructions a video job needs. Video batches always resolve to the
// first element of each axis.
func CompileVideo(s Settings, colorProfile string) string {
	base := Compile(s, s.ViewAngles[0], s.Devices[0], s.FocalLengths[0], colorProfile)

	duration := s.VideoDuration
	if duration <= 0 {
		duration = minVideoDuration
	}

	motion := "Action: Gentle cinematic camera movement, product slowly rotating or being handled naturally."
	if txt := strings.TrimSpace(s.VideoPrompt); txt != "" {
		motion = fmt.Sprintf("USER INSTRUCTION: %q\nINTERPRETATION: Translate the instruction above into a visual physics action and execute it. The instruction may be written in Vietnamese. Keep the movement smooth and realistic.", txt)
	}

	audio := "AUDIO: Silent."
	if s.HasVoice {
		audio = "AUDIO: Include ambient background noise and product interaction sounds (ASMR)."
	}

	return joinBlocks([]string{
		base,
		"TYPE: VIDEO GENERATION.",
		fmt.Sprintf("TARGET DURATION: %d seconds. FRAME RATE: 24fps.", duration),
		"MOTION INSTRUCTIONS:\n" + motion,
		audio,
		"Requirements: high temporal consistency, no morphing of the product, social media commercial quality (1080p).",
	})
}

func compileCompositing(s Settings) string {
	blend := "Blend the product naturally into the reference scene."
	if txt := strings.TrimSpace(s.DualImagePrompt); txt != "" {
		blend = "Blend instruction: " + txt
	}
	parts := []string{
		"ROLE: Expert Photo Compositor.",
		"TASK: STRICT COMPOSITING. The second input image is an IMMUTABLE BASE LAYER.",
		"PRESERVE EXACTLY: the depicted person's face and identity, the background, the framing and the existing composition of the reference image. Do not repaint, restyle or move anything that is already there.",
		"INSERT: only the product from the first input image.",
		"RELIGHT: only the inserted product, matching the direction, color and softness of the light already present in the reference image.",
		blend,
	}
	if desc := strings.TrimSpace(s.ProductDescription); desc != "" {
		parts = append(parts, "Product: "+desc+".")
	}
	parts = append(parts, "EXECUTION: Seamless, photorealistic composite. The result must be indistinguishable from a photo taken in the reference scene.")
	return joinBlocks(parts)
}

func preservationText(s Settings) string {
	var b strings.Builder
	b.WriteString("PRODUCT PRESERVATION (CRITICAL): keep the product geometry 100% rigid; preserve logos, text and material properties (reflectivity, transparency).")
	if desc := strings.TrimSpace(s.ProductDescription); desc != "" {
		b.WriteString(" Product: ")
		b.WriteString(desc)
		b.WriteString(".")
	}
	return b.String()
}

func cameraSystemText(device Device) string {
	if device == DeviceMobile {
		return "CAMERA SYSTEM: SMARTPHONE SENSOR. Low dynamic range, highlights may clip slightly, deep hard shadows. Digital sharpening halos and ISO grain. Raw, unedited, social-media-story aesthetic."
	}
	return "CAMERA SYSTEM: PROFESSIONAL STUDIO CAMERA (medium format class). High dynamic range, soft highlight rolloff, true optical physics from prime glass. High-end commercial production aesthetic."
}

// lensText states the optical physics of the chosen focal length. Wide glass
// gets barrel distortion and deep depth of field; telephoto glass gets
// background compression and shallow depth of field.
func lensText(lens FocalLength, device Device) string {
	var optics string
	switch lens {
	case Lens16mm:
		optics = "ultra wide. Pronounced barrel distortion at the edges, DEEP depth of field, the background stays visible and sharp. Exaggerated foreground scale."
	case Lens24mm:
		optics = "wide. Mild barrel distortion, deep depth of field, generous environmental context around the product."
	case Lens35mm:
		optics = "reportage wide-normal. Near-natural perspective, slight distortion only at the frame edges, moderately deep depth of field."
	case Lens50mm:
		optics = "standard. Human-eye perspective, no visible distortion, moderate depth of field with gentle background softness."
	case Lens85mm:
		optics = "short telephoto. STRONG optical bokeh, the background must be heavily blurred (creamy), extreme subject separation and noticeable background compression."
	case Lens100mm:
		optics = "telephoto macro. Very shallow depth of field, razor-thin focus plane on the product, strongly compressed background."
	case Lens120mm:
		optics = "long telephoto. Maximum background compression, distant elements stacked close behind the subject, silky full-melt bokeh."
	default:
		optics = "standard. Natural perspective and moderate depth of field."
	}
	if device == DeviceMobile {
		return fmt.Sprintf("LENS: %s equivalent on a phone camera module, %s Computational processing may exaggerate the effect.", lens, optics)
	}
	return fmt.Sprintf("LENS: %s prime, %s", lens, optics)
}

// shotSizeText states the product's approximate frame occupancy and crop
// behavior for each framing preset.
func shotSizeText(size ShotSize) string {
	switch size {
	case ShotWide:
		return "FRAMING: WIDE SHOT. The product occupies roughly 10-15% of the frame. The surrounding environment dominates; negative space is the point."
	case ShotMedium:
		return "FRAMING: MEDIUM SHOT. The product occupies roughly 70-80% of the frame. Focus on overall form and shape."
	case ShotCloseUp:
		return "FRAMING: EXTREME CLOSE-UP / MACRO. The product fills 100% of the frame or crops beyond its edges. The camera is physically very close; surface texture (grain, reflection, polish) must be visible."
	default:
		return "FRAMING: FULL SHOT. The product occupies roughly 40-50% of the frame, fully visible top to bottom. Standard e-commerce framing."
	}
}

// angleText states the camera geometry for the chosen elevation. Exactly one
// of these blocks ever appears in a compiled prompt.
func angleText(angle ViewAngle) string {
	switch angle {
	case AngleHigh45:
		return "CAMERA ELEVATION: HIGH ANGLE (45 degrees). The camera looks down at the subject, revealing the top surface and the front face together; clear 3D depth."
	case AngleLow:
		return "CAMERA ELEVATION: LOW ANGLE / HERO SHOT. The camera sits near the ground looking up. The horizon line is low and the product reads monumental."
	case AngleTopDown:
		return "CAMERA ELEVATION: BIRD'S-EYE TOP SHOT (90 degrees vertical). The product lies flat on the surface and the camera looks straight down. Strictly planar knolling/flatlay composition, no horizon, no standing front face."
	default:
		return "CAMERA ELEVATION: EYE LEVEL (0 degrees). The lens is parallel to the horizon and centered on the product. Neutral perspective, vertical lines stay straight."
	}
}

func filterText(filter Filter) string {
	switch filter {
	case FilterCinematic:
		return "COLOR GRADING: Cinematic. Teal and orange separation, high dynamic range, rich blacks, slight film grain, dramatic mood."
	case FilterClean:
		return "COLOR GRADING: Commercial high-key. Bright exposure, clean whites, vibrant colors, low contrast, clinical and fresh."
	default:
		return "COLOR GRADING: True-to-life. Neutral white balance, accurate color reproduction, soft natural contrast."
	}
}

const removeBackgroundText = "ENVIRONMENT: PURE SOLID WHITE BACKGROUND (#FFFFFF) with gentle ground shadows for grounding. Studio isolation style."

func sceneText(s Settings) string {
	if s.RemoveBackground {
		return removeBackgroundText
	}
	switch s.Scene {
	case SceneTechDesk:
		return "ENVIRONMENT: Modern tech desk / creator workspace. Matte desk mat, mechanical keyboard and monitor glow blurred behind the product. Organized cable routing, ambient LED accents."
	case SceneWorkbench:
		return "ENVIRONMENT: Maker lab workbench. Scratched hardwood or steel surface, tools and components softly out of focus, task lamp pooling warm light on the product."
	case SceneAcrylicBase:
		return "ENVIRONMENT: Clear acrylic display base with edge-lit glow. Dark seamless backdrop, precise reflections beneath the product, tech-launch presentation style."
	case SceneStudioDark:
		return "ENVIRONMENT: Black studio set. Charcoal seamless background, controlled specular highlights tracing the product's silhouette, everything else falls to black."
	case SceneCreatorLifestyle:
		return "ENVIRONMENT: Content creator's desk in use. Open notebook, coffee cup, ring light reflection, lived-in but styled. The product sits where a creator would actually keep it."
	case SceneShelfDecor:
		return "ENVIRONMENT: Aesthetic bookshelf vignette. Books, a small plant and ceramic objects arranged around the product, soft warm room light."
	case SceneStreetwear:
		return "ENVIRONMENT: Urban streetwear context. Concrete textures, a hint of graffiti and chain-link bokeh behind the product, overcast skate-spot light."
	case SceneNightLight:
		return "ENVIRONMENT: Bedside table at night. Warm lamp glow as the only light source, soft shadows across linen, quiet domestic intimacy."
	case SceneHandheldUsage:
		return "ENVIRONMENT: In-hand real usage context. The product shown where it is actually used, everyday surroundings softly blurred."
	case SceneAestheticRoom:
		return "ENVIRONMENT: Modern decorated room corner. Curated furniture, diffuse daylight from a side window, magazine-interior composition."
	case SceneBalconyUrban:
		return "ENVIRONMENT: Apartment balcony over the city. Railing and skyline bokeh behind the product, open-air daylight, potted plants at the edge of frame."
	case SceneParkCity:
		return "ENVIRONMENT: City park. Green foliage bokeh, dappled sunlight through leaves, the product on a bench or stone ledge."
	case SceneHoiAn:
		return "ENVIRONMENT: Hoi An old town. Ochre-yellow heritage walls, silk lanterns, warm golden tone throughout, nostalgic street atmosphere."
	case SceneCityNeon:
		return "ENVIRONMENT: City street at night under neon. Saturated signage reflections on wet pavement, cyan and magenta rim light on the product."
	case SceneVintageStreet:
		return "ENVIRONMENT: Old street corner with mossy, weathered walls. Patina textures, muted tones, soft overcast light."
	case SceneCustom:
		desc := strings.TrimSpace(s.CustomScenePrompt)
		if desc == "" {
			desc = "Professional commercial background"
		}
		return "ENVIRONMENT: " + desc + "."
	default:
		return "ENVIRONMENT: Professional commercial background."
	}
}

func lightingText(s Settings) string {
	if s.RemoveBackground {
		return "LIGHTING: Even studio isolation light, shadow only beneath the product."
	}
	switch s.Lighting {
	case LightingHard:
		return "LIGHTING: Hard light. A single undiffused source, crisp hard-edged shadows, strong specular highlights."
	case LightingNaturalWindow:
		return "LIGHTING: Window light. Directional soft daylight from one side, long gentle falloff across the scene."
	case LightingBacklight:
		return "LIGHTING: Studio backlight. The key source sits behind the subject, edges glow, the front holds in soft fill."
	case LightingNaturalBacklight:
		return "LIGHTING: Natural backlight (rim light). The light source is behind the subject, creating a glowing outline and halo effect."
	default:
		return "LIGHTING: Softbox. Large diffused source, wrap-around soft shadows, smooth highlight transitions."
	}
}

func moodText(s Settings) string {
	return fmt.Sprintf("MOOD: %s. TIME OF DAY: %s.", s.Mood, strings.ReplaceAll(string(s.TimeOfDay), "_", " "))
}

func joinBlocks(parts []string) string {
	cleaned := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "\n")
}
