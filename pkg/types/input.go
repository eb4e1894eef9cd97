package types

// GenerationInput is the user-level description of a generation. Nil fields
// are filled from the default input when a generation starts.
type GenerationInput struct {
	Model              *string        `json:"model,omitempty"`
	Width              *int           `json:"width,omitempty"`
	Height             *int           `json:"height,omitempty"`
	Prompts            []Prompt       `json:"prompts,omitempty"`
	CFGScale           *float64       `json:"cfgScale,omitempty"`
	Sampler            *Sampler       `json:"sampler,omitempty"`
	Style              *string        `json:"style,omitempty"`
	Steps              *int           `json:"steps,omitempty"`
	Seed               *int64         `json:"seed,omitempty"`
	ClipGuidancePreset GuidancePreset `json:"clipGuidancePreset,omitempty"`
	InitialImage       *InitialImage  `json:"initialImage,omitempty"`
	MaskImage          *MaskImage     `json:"maskImage,omitempty"`
	Extras             map[string]any `json:"extras,omitempty"`
}

type Prompt struct {
	Text   *string  `json:"text,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

type Sampler struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InitialImage struct {
	Base64 string        `json:"base64"`
	Weight *float64      `json:"weight,omitempty"`
	Mode   InitImageMode `json:"mode,omitempty"`
	// Used with STEP_SCHEDULE mode.
	ScheduleStart *float64 `json:"scheduleStart,omitempty"`
	ScheduleEnd   *float64 `json:"scheduleEnd,omitempty"`
}

type MaskImage struct {
	Base64 string     `json:"base64,omitempty"`
	Source MaskSource `json:"source"`
}

// EndpointDescriptor is one entry of the endpoint catalog.
type EndpointDescriptor struct {
	ModelID      string `json:"modelId"`
	ModelName    string `json:"modelName"`
	EndpointName string `json:"endpointName"`
}

type Style struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func StringPtr(s string) *string { return &s }
func IntPtr(i int) *int { return &i }
func Int64Ptr(i int64) *int64 { return &i }
func Float64Ptr(f float64) *float64 { return &f }
