package studio

import "strings"

// ModelID identifies a generation backend and its pricing tier.
type ModelID string

const (
	ModelFastImage ModelID = "gemini-2.5-flash-image"
	ModelProImage  ModelID = "gemini-3-pro-image-preview"
	ModelVideo     ModelID = "veo-3.1-fast-generate-preview"
)

// IsVideo reports whether the model produces video output.
func (m ModelID) IsVideo() bool {
	return m == ModelVideo
}

type Scene string

const (
	SceneTechDesk         Scene = "tech_desk"
	SceneWorkbench        Scene = "workbench"
	SceneAcrylicBase      Scene = "acrylic_base"
	SceneStudioDark       Scene = "studio_dark"
	SceneCreatorLifestyle Scene = "creator_lifestyle"
	SceneShelfDecor       Scene = "shelf_decor"
	SceneStreetwear       Scene = "streetwear"
	SceneNightLight       Scene = "night_light"
	SceneHandheldUsage    Scene = "handheld_usage"
	SceneAestheticRoom    Scene = "aesthetic_room"
	SceneBalconyUrban     Scene = "balcony_urban"
	SceneParkCity         Scene = "park_city"
	SceneHoiAn            Scene = "hoi_an"
	SceneCityNeon         Scene = "city_neon"
	SceneVintageStreet    Scene = "vintage_street"
	SceneCustom           Scene = "custom"
)

type TimeOfDay string

const (
	TimeMorning    TimeOfDay = "morning"
	TimeNoon       TimeOfDay = "noon"
	TimeGoldenHour TimeOfDay = "golden_hour"
	TimeNight      TimeOfDay = "night"
)

type Mood string

const (
	MoodMinimalist Mood = "minimalist"
	MoodLuxury     Mood = "luxury"
	MoodCozy       Mood = "cozy"
	MoodModern     Mood = "modern"
	MoodLifestyle  Mood = "lifestyle"
	MoodPremium    Mood = "premium"
	MoodTech       Mood = "tech"
)

type Lighting string

const (
	LightingSoftbox          Lighting = "softbox"
	LightingHard             Lighting = "hard_light"
	LightingNaturalWindow    Lighting = "natural_window"
	LightingBacklight        Lighting = "backlight"
	LightingNaturalBacklight Lighting = "natural_backlight"
)

type Filter string

const (
	FilterNatural   Filter = "natural"
	FilterClean     Filter = "clean"
	FilterCinematic Filter = "cinematic"
)

type FocalLength string

const (
	Lens16mm  FocalLength = "16mm"
	Lens24mm  FocalLength = "24mm"
	Lens35mm  FocalLength = "35mm"
	Lens50mm  FocalLength = "50mm"
	Lens85mm  FocalLength = "85mm"
	Lens100mm FocalLength = "100mm"
	Lens120mm FocalLength = "120mm"
)

type ViewAngle string

const (
	AngleEyeLevel ViewAngle = "eye_level"
	AngleHigh45   ViewAngle = "high_angle_45"
	AngleLow      ViewAngle = "low_angle"
	AngleTopDown  ViewAngle = "top_down"
)

type ShotSize string

const (
	ShotWide    ShotSize = "wide"
	ShotFull    ShotSize = "full"
	ShotMedium  ShotSize = "medium"
	ShotCloseUp ShotSize = "close_up"
)

type Device string

const (
	DeviceProfessional Device = "professional"
	DeviceMobile       Device = "mobile"
)

type HumanStyle string

const (
	StyleVietnamese HumanStyle = "vietnamese"
	StyleEuropean   HumanStyle = "european"
)

type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "2:3"
	AspectLandscape AspectRatio = "3:2"
	AspectFourFive  AspectRatio = "4:5"
	AspectStory     AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// InteractionKind enumerates the known human-interaction presets. Free-form
// requests travel in Interaction.FreeText instead.
type InteractionKind string

const (
	InteractNone            InteractionKind = "none"
	InteractHandHolding     InteractionKind = "hand_holding"
	InteractPresenting      InteractionKind = "presenting"
	InteractUsing           InteractionKind = "using"
	InteractModelStanding   InteractionKind = "model_standing"
	InteractBagClip         InteractionKind = "bag_clip"
	InteractTypingWorking   InteractionKind = "typing_working"
	InteractTurningOn       InteractionKind = "turning_on"
	InteractFlatlayArrange  InteractionKind = "flatlay_arranging"
	InteractHoldingToLight  InteractionKind = "holding_to_light"
	InteractHandPickUp      InteractionKind = "hand_pick_up"
	InteractHandRotate      InteractionKind = "hand_rotate"
	InteractUsingProduct    InteractionKind = "using_product"
	InteractUnboxing        InteractionKind = "unboxing"
	InteractPlugInTurnOn    InteractionKind = "plug_in_turn_on"
	InteractBagClipMotion   InteractionKind = "bag_clip_motion"
	InteractSatisfyingClick InteractionKind = "satisfying_click"
)

// Interaction is a tagged union: when FreeText is non-empty it overrides Kind
// and the configured human style entirely.
type Interaction struct {
	Kind     InteractionKind `json:"kind"`
	FreeText string          `json:"free_text,omitempty"`
}

// WatermarkPosition anchors the logo overlay within the artifact.
type WatermarkPosition string

const (
	WatermarkTopLeft     WatermarkPosition = "top-left"
	WatermarkTopRight    WatermarkPosition = "top-right"
	WatermarkBottomLeft  WatermarkPosition = "bottom-left"
	WatermarkBottomRight WatermarkPosition = "bottom-right"
	WatermarkCenter      WatermarkPosition = "center"
)

type WatermarkConfig struct {
	Enabled  bool              `json:"enabled"`
	URL      string            `json:"url"`
	Position WatermarkPosition `json:"position"`
	Opacity  float64           `json:"opacity"`
	Scale    float64           `json:"scale"`
}

// Settings is the immutable per-batch configuration snapshot.
type Settings struct {
	Model              ModelID       `json:"model"`
	ProductDescription string        `json:"product_description,omitempty"`
	Scene              Scene         `json:"scene"`
	CustomScenePrompt  string        `json:"custom_scene_prompt,omitempty"`
	TimeOfDay          TimeOfDay     `json:"time_of_day"`
	Mood               Mood          `json:"mood"`
	Lighting           Lighting      `json:"lighting"`
	Filter             Filter        `json:"filter"`
	FocalLengths       []FocalLength `json:"focal_lengths"`
	ViewAngles         []ViewAngle   `json:"view_angles"`
	Devices            []Device      `json:"photography_devices"`
	ShotSize           ShotSize      `json:"shot_size"`
	OutputCount        int           `json:"output_count"`
	Interaction        Interaction   `json:"interaction"`
	HumanStyle         HumanStyle    `json:"human_style"`

	RemoveBackground bool `json:"remove_background"`
	HighRes          bool `json:"high_res"`
	ColorSync        bool `json:"color_sync"`

	// A second reference image switches the compiler into strict
	// compositing when KeepRefBackground is also set.
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
	KeepRefBackground bool   `json:"keep_ref_background"`
	DualImagePrompt   string `json:"dual_image_prompt,omitempty"`

	AspectRatio AspectRatio `json:"aspect_ratio"`

	VideoPrompt   string `json:"video_prompt,omitempty"`
	VideoDuration int    `json:"video_duration,omitempty"`
	HasVoice      bool   `json:"has_voice,omitempty"`

	Watermark WatermarkConfig `json:"watermark"`
}

const (
	minVideoDuration = 5
	maxVideoDuration = 10
)

// DefaultSettings mirrors the defaults the studio UI starts from.
func DefaultSettings() Settings {
	return Settings{
		Model:         ModelFastImage,
		Scene:         SceneTechDesk,
		TimeOfDay:     TimeNoon,
		Mood:          MoodModern,
		Lighting:      LightingSoftbox,
		Filter:        FilterNatural,
		FocalLengths:  []FocalLength{Lens50mm},
		ViewAngles:    []ViewAngle{AngleEyeLevel},
		Devices:       []Device{DeviceProfessional},
		ShotSize:      ShotFull,
		OutputCount:   1,
		Interaction:   Interaction{Kind: InteractNone},
		HumanStyle:    StyleVietnamese,
		ColorSync:     true,
		AspectRatio:   AspectSquare,
		VideoDuration: minVideoDuration,
		Watermark: WatermarkConfig{
			Position: WatermarkBottomRight,
			Opacity:  0.8,
			Scale:    0.2,
		},
	}
}

// Normalize repairs a settings snapshot in place so that downstream sizing and
// expansion can never produce a zero-job batch: every image axis falls back to
// a single-element default, the output count is at least one, and video
// constraints (duration, aspect ratio) are clamped to what the backend
// accepts.
func (s *Settings) Normalize() {
	if s.Model == "" {
		s.Model = ModelFastImage
	}
	if len(s.FocalLengths) == 0 {
		s.FocalLengths = []FocalLength{Lens50mm}
	}
	if len(s.ViewAngles) == 0 {
		s.ViewAngles = []ViewAngle{AngleEyeLevel}
	}
	if len(s.Devices) == 0 {
		s.Devices = []Device{DeviceProfessional}
	}
	if s.OutputCount < 1 {
		s.OutputCount = 1
	}
	if s.ShotSize == "" {
		s.ShotSize = ShotFull
	}
	if s.Interaction.Kind == "" {
		s.Interaction.Kind = InteractNone
	}
	if s.HumanStyle == "" {
		s.HumanStyle = StyleVietnamese
	}
	if s.AspectRatio == "" {
		s.AspectRatio = AspectSquare
	}
	s.ReferenceImageURL = strings.TrimSpace(s.ReferenceImageURL)
	if s.Model.IsVideo() {
		if s.VideoDuration < minVideoDuration {
			s.VideoDuration = minVideoDuration
		}
		if s.VideoDuration > maxVideoDuration {
			s.VideoDuration = maxVideoDuration
		}
		// Veo accepts only the two social formats.
		if s.AspectRatio != AspectStory {
			s.AspectRatio = AspectWide
		}
	}
}

// CompositingMode reports whether the batch runs in strict reference
// compositing: the second image is an immutable base layer and only the
// product may be inserted and relit.
func (s Settings) CompositingMode() bool {
	return s.ReferenceImageURL != "" && s.KeepRefBackground
}
