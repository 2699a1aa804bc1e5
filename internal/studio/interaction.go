package studio

import "strings"

// modelPlaceholder is substituted with the configured human style before the
// interaction text is emitted.
const modelPlaceholder = "{model}"

type interactionKey struct {
	device Device
	kind   InteractionKind
}

// interactionPrompts resolves (device, interaction) pairs to prompt text.
// Mobile rows lean into raw, flash-lit, authentic-imperfect snapshot
// language; professional rows into polished commercial language. Keeping
// this as one table keeps the branching exhaustive and testable.
var interactionPrompts = map[interactionKey]string{
	// Mobile, photo.
	{DeviceMobile, InteractNone}:           "Subject: RAW PHONE PHOTO. The product sits casually on a surface. Harsh direct flash is ON, hard shadows thrown behind the product, visible digital noise. Looks like a quick snapshot sent over chat.",
	{DeviceMobile, InteractHandHolding}:    "Subject: POV HAND-HELD SHOT. A real user's hand grips the product firmly. Direct camera flash on, raw unedited skin texture with visible pores, thumb slightly overlapping the label. Background falls dark from flash falloff. Authentic UGC review style.",
	{DeviceMobile, InteractPresenting}:     "Subject: MIRROR SELFIE / WIDE LENS STYLE. A hand holds the product close to the lens with wide-angle distortion (oversized hand, smaller body). Shot-on-phone aesthetic, slightly tilted horizon.",
	{DeviceMobile, InteractUsing}:          "Subject: ACTION SNAPSHOT. A " + modelPlaceholder + " using the product in a messy real-life environment. Motion blur on the hands, not a posed photo. Chaotic, authentic energy, high contrast.",
	{DeviceMobile, InteractModelStanding}:  "Subject: CASUAL OUTFIT CHECK. A " + modelPlaceholder + " standing with the product, full body or 3/4 shot from a phone back camera. Artificial sharpening artifacts, ceiling fluorescent light or direct sunlight.",
	{DeviceMobile, InteractBagClip}:        "Subject: PHONE SNAP OF THE PRODUCT clipped onto a backpack strap or bag, shot mid-walk. Slight motion blur, everyday street background.",
	{DeviceMobile, InteractTypingWorking}:  "Subject: OVER-THE-SHOULDER PHONE SHOT of hands typing or working with the product on a cluttered desk. Screen glow mixing with room light.",
	{DeviceMobile, InteractTurningOn}:      "Subject: CASUAL PHONE CLIP-FRAME. A finger flips the product's switch, hard flash reflections on the housing.",
	{DeviceMobile, InteractFlatlayArrange}: "Subject: PHONE FLATLAY IN PROGRESS. A hand reaches into frame arranging the product among everyday objects. Uneven shadows from a single room light.",
	{DeviceMobile, InteractHoldingToLight}: "Subject: PRODUCT HELD UP toward a window or lamp for inspection, shot on a phone. Lens flare and blown highlights.",

	// Mobile, video motion.
	{DeviceMobile, InteractHandPickUp}:      "Action: POV shot. A hand reaches into frame and grabs the product quickly, unboxing/testing energy.",
	{DeviceMobile, InteractHandRotate}:      "Action: Hand-held product review. The user rotates the product in front of the phone camera to show every side.",
	{DeviceMobile, InteractUsingProduct}:    "Action: A user testing the product in real time. Authentic, unpolished movement.",
	{DeviceMobile, InteractUnboxing}:        "Action: POV unboxing. Hands tear open the package or lift the lid. Shaky handheld camera feel.",
	{DeviceMobile, InteractPlugInTurnOn}:    "Action: Hands plug the product in and switch it on, phone camera hunting for focus as the light comes up.",
	{DeviceMobile, InteractBagClipMotion}:   "Action: Hands clip the product onto a bag strap, quick handheld framing.",
	{DeviceMobile, InteractSatisfyingClick}: "Action: Close handheld shot of a finger pressing the product's button repeatedly. Visual ASMR pacing.",

	// Professional, photo.
	{DeviceProfessional, InteractNone}:           "Subject: HIGH-END STILL LIFE. The object is stationary. Perfect composition.",
	{DeviceProfessional, InteractHandHolding}:    "Subject: HAND MODELING. A perfectly manicured hand of a " + modelPlaceholder + " enters the frame, holding the product gracefully. Elegant finger positioning, soft flattering light on the skin. Commercial standard.",
	{DeviceProfessional, InteractPresenting}:     "Subject: LUXURY PRESENTATION. Two hands of a " + modelPlaceholder + " gently present the product as if it were a jewel. Symmetrical, respectful pose, focus on elegance.",
	{DeviceProfessional, InteractUsing}:          "Subject: COMMERCIAL LIFESTYLE. A " + modelPlaceholder + " using the product in a staged, perfect environment. The model is well lit and posed. Advertising quality.",
	{DeviceProfessional, InteractModelStanding}:  "Subject: FASHION EDITORIAL. A professional " + modelPlaceholder + " model posing with the product. High-fashion lighting, sharp focus, magazine cover quality.",
	{DeviceProfessional, InteractBagClip}:        "Subject: STYLED ACCESSORY SHOT. The product clipped onto a premium bag on a seamless backdrop, styled like a catalog spread.",
	{DeviceProfessional, InteractTypingWorking}:  "Subject: EXECUTIVE WORKSPACE. Composed hands of a " + modelPlaceholder + " typing beside the product on a pristine desk. Controlled key light, editorial polish.",
	{DeviceProfessional, InteractTurningOn}:      "Subject: PRODUCT DEMONSTRATION. A precise fingertip activates the product's switch, rim light tracing the housing.",
	{DeviceProfessional, InteractFlatlayArrange}: "Subject: ART-DIRECTED FLATLAY. A stylist's hand places the product into a balanced flatlay arrangement. Even diffuse light, deliberate negative space.",
	{DeviceProfessional, InteractHoldingToLight}: "Subject: HERO INSPECTION SHOT. The product held up against a controlled backlight, silhouette and material catching the rim.",

	// Professional, video motion.
	{DeviceProfessional, InteractHandPickUp}:      "Action: Slow-motion cinematic pick up. The hand enters gracefully and lifts the product with precision.",
	{DeviceProfessional, InteractHandRotate}:      "Action: Turntable-style rotation or a very smooth hand rotation showcasing the product silhouette.",
	{DeviceProfessional, InteractUsingProduct}:    "Action: Cinematic demonstration of the product features by a professional actor.",
	{DeviceProfessional, InteractUnboxing}:        "Action: Premium unboxing experience. Slow reveal, controlled lighting changes.",
	{DeviceProfessional, InteractPlugInTurnOn}:    "Action: Macro sequence of the product being connected and powered on, light blooming in a controlled ramp.",
	{DeviceProfessional, InteractBagClipMotion}:   "Action: Studio close-up of the product being fastened to a bag, smooth gimbal move.",
	{DeviceProfessional, InteractSatisfyingClick}: "Action: Macro button press with precise focus pull. Crisp, deliberate, tactile.",
}

func humanStyleLabel(style HumanStyle) string {
	if style == StyleEuropean {
		return "European person"
	}
	return "Vietnamese person"
}

// interactionText resolves the interaction block for a compiled prompt. A
// free-text override wins outright and suppresses both the preset kind and
// the human style.
func interactionText(device Device, inter Interaction, style HumanStyle) string {
	if txt := strings.TrimSpace(inter.FreeText); txt != "" {
		return "Subject: " + txt
	}
	if txt, ok := interactionPrompts[interactionKey{device, inter.Kind}]; ok {
		return strings.ReplaceAll(txt, modelPlaceholder, humanStyleLabel(style))
	}
	if device == DeviceMobile {
		return "Subject: Focus on the product in a real environment."
	}
	return "Subject: Focus strictly on the product."
}
