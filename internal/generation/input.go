package generation

import (
	"github.com/georgeshao/sdstudio/pkg/types"
)

const (
	defaultSize           = 1024
	defaultCFGScale       = 7
	defaultSteps          = 50
	defaultStyle          = "enhance"
	defaultNegativeWeight = -0.75
	// DefaultCount is the number of images the front end asks for by default.
	DefaultCount = 1
)

// defaultInput builds the input every generation is merged over.
func defaultInput(prompt string, catalog []types.EndpointDescriptor) types.GenerationInput {
	in := types.GenerationInput{
		Width:  types.IntPtr(defaultSize),
		Height: types.IntPtr(defaultSize),
		Prompts: []types.Prompt{
			{Text: types.StringPtr(prompt), Weight: types.Float64Ptr(1)},
			{Text: types.StringPtr(""), Weight: types.Float64Ptr(defaultNegativeWeight)},
		},
		CFGScale: types.Float64Ptr(defaultCFGScale),
		Sampler:  &types.Sampler{ID: samplers[0].ID, Name: samplers[0].Name},
		Style:    types.StringPtr(defaultStyle),
		Steps:    types.IntPtr(defaultSteps),
		Seed:     types.Int64Ptr(0),
	}
	if len(catalog) > 0 {
		in.Model = types.StringPtr(catalog[0].ModelID)
	}
	return in
}

// resolveInput fills every absent field of in from def. Prompts without
// text get a fresh random prompt.
func resolveInput(in, def types.GenerationInput, prompt func() string) types.GenerationInput {
	out := in
	out.Model = pick(in.Model, def.Model)
	out.Width = pick(in.Width, def.Width)
	out.Height = pick(in.Height, def.Height)
	out.CFGScale = pick(in.CFGScale, def.CFGScale)
	out.Style = pick(in.Style, def.Style)
	out.Steps = pick(in.Steps, def.Steps)
	out.Seed = pick(in.Seed, def.Seed)

	switch {
	case in.Sampler == nil:
		out.Sampler = def.Sampler
	case in.Sampler.Name == "":
		if s, ok := samplerByID(in.Sampler.ID); ok {
			out.Sampler = &s
		} else {
			out.Sampler = def.Sampler
		}
	}

	if len(in.Prompts) == 0 {
		out.Prompts = def.Prompts
	} else {
		out.Prompts = make([]types.Prompt, len(in.Prompts))
		for i, p := range in.Prompts {
			if p.Text == nil {
				p.Text = types.StringPtr(prompt())
			}
			out.Prompts[i] = p
		}
	}
	return out
}

func pick[T any](v, fallback *T) *T {
	if v != nil {
		return v
	}
	return fallback
}

// buildRequest derives the request for sample index of a resolved input.
// Every request asks for exactly one image.
func buildRequest(in types.GenerationInput, index int) *types.GenerationRequest {
	req := &types.GenerationRequest{
		Height:             *in.Height,
		Width:              *in.Width,
		TextPrompts:        make([]types.TextPrompt, 0, len(in.Prompts)),
		CFGScale:           *in.CFGScale,
		ClipGuidancePreset: in.ClipGuidancePreset,
		Sampler:            in.Sampler.Name,
		Samples:            1,
		Seed:               *in.Seed + int64(index),
		Steps:              *in.Steps,
		StylePreset:        *in.Style,
		Extras:             in.Extras,
	}
	for _, p := range in.Prompts {
		req.TextPrompts = append(req.TextPrompts, types.TextPrompt{Text: *p.Text, Weight: p.Weight})
	}

	if img := in.InitialImage; img != nil && img.Base64 != "" {
		req.InitImage = img.Base64
		req.InitImageMode = img.Mode
		if req.InitImageMode == "" {
			req.InitImageMode = types.InitImageModeImageStrength
		}
		switch req.InitImageMode {
		case types.InitImageModeStepSchedule:
			req.StepScheduleStart = img.ScheduleStart
			req.StepScheduleEnd = img.ScheduleEnd
		default:
			req.ImageStrength = img.Weight
		}
	}
	if mask := in.MaskImage; mask != nil && mask.Source != "" {
		req.MaskSource = mask.Source
		if mask.Source != types.MaskSourceInitImageAlpha {
			req.MaskImage = mask.Base64
		}
	}
	return req
}

// withSeed returns a copy of in carrying seed.
func withSeed(in types.GenerationInput, seed int64) types.GenerationInput {
	in.Seed = types.Int64Ptr(seed)
	return in
}
