package types

// Wire types exchanged with a Stable Diffusion inference endpoint.

type GuidancePreset string

const (
	GuidancePresetNone      GuidancePreset = "NONE"
	GuidancePresetSimple    GuidancePreset = "SIMPLE"
	GuidancePresetFastBlue  GuidancePreset = "FAST_BLUE"
	GuidancePresetFastGreen GuidancePreset = "FAST_GREEN"
	GuidancePresetSlow      GuidancePreset = "SLOW"
	GuidancePresetSlower    GuidancePreset = "SLOWER"
	GuidancePresetSlowest   GuidancePreset = "SLOWEST"
)

type InitImageMode string

const (
	InitImageModeImageStrength InitImageMode = "IMAGE_STRENGTH"
	InitImageModeStepSchedule  InitImageMode = "STEP_SCHEDULE"
)

type MaskSource string

const (
	MaskSourceImageBlack     MaskSource = "MASK_IMAGE_BLACK"
	MaskSourceImageWhite     MaskSource = "MASK_IMAGE_WHITE"
	MaskSourceInitImageAlpha MaskSource = "INIT_IMAGE_ALPHA"
)

const (
	FinishReasonSuccess         = "SUCCESS"
	FinishReasonError           = "ERROR"
	FinishReasonContentFiltered = "CONTENT_FILTERED"
)

type TextPrompt struct {
	Text   string   `json:"text"`
	Weight *float64 `json:"weight,omitempty"`
}

type GenerationRequest struct {
	Height             int            `json:"height"`
	Width              int            `json:"width"`
	TextPrompts        []TextPrompt   `json:"text_prompts"`
	CFGScale           float64        `json:"cfg_scale"`
	ClipGuidancePreset GuidancePreset `json:"clip_guidance_preset,omitempty"`
	Sampler            string         `json:"sampler,omitempty"`
	Samples            int            `json:"samples"`
	Seed               int64          `json:"seed"`
	Steps              int            `json:"steps"`
	StylePreset        string         `json:"style_preset,omitempty"`
	Extras             map[string]any `json:"extras,omitempty"`

	// image-to-image
	InitImage         string        `json:"init_image,omitempty"`
	InitImageMode     InitImageMode `json:"init_image_mode,omitempty"`
	ImageStrength     *float64      `json:"image_strength,omitempty"`
	StepScheduleStart *float64      `json:"step_schedule_start,omitempty"`
	StepScheduleEnd   *float64      `json:"step_schedule_end,omitempty"`

	// masking
	MaskSource MaskSource `json:"mask_source,omitempty"`
	MaskImage  string     `json:"mask_image,omitempty"`
}

type Artifact struct {
	Seed         int64  `json:"seed"`
	Base64       string `json:"base64"`
	FinishReason string `json:"finishReason"`
}

type ResponseError struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type GenerationResponse struct {
	Result    string         `json:"result"`
	Artifacts []Artifact     `json:"artifacts"`
	Error     *ResponseError `json:"error,omitempty"`
}

// Failed reports whether the endpoint populated its error field.
func (r *GenerationResponse) Failed() bool {
	return r.Error != nil && (r.Error.ID != "" || r.Error.Name != "" || r.Error.Message != "")
}
