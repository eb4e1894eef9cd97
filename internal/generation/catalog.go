package generation

import (
	"math/rand/v2"

	"github.com/georgeshao/sdstudio/pkg/types"
)

const stylePreviewURL = "https://dreamstudio.ai/presets/"

var samplers = []types.Sampler{
	{ID: "0", Name: "DDIM"},
	{ID: "1", Name: "DDPM"},
	{ID: "2", Name: "K_DPMPP_SDE"},
	{ID: "3", Name: "K_DPMPP_2M"},
	{ID: "4", Name: "K_DPMPP_2S_ANCESTRAL"},
	{ID: "5", Name: "K_DPM_2"},
	{ID: "6", Name: "K_DPM_2_ANCESTRAL"},
	{ID: "7", Name: "K_EULER"},
	{ID: "8", Name: "K_EULER_ANCESTRAL"},
	{ID: "9", Name: "K_HEUN"},
	{ID: "10", Name: "K_LMS"},
}

var styles = []types.Style{
	{ID: "enhance", Name: "Enhance"},
	{ID: "anime", Name: "Anime"},
	{ID: "photographic", Name: "Photographic"},
	{ID: "digital-art", Name: "Digital art"},
	{ID: "comic-book", Name: "Comic book"},
	{ID: "fantasy-art", Name: "Fantasy art"},
	{ID: "analog-film", Name: "Analog film"},
	{ID: "neon-punk", Name: "Neon punk"},
	{ID: "isometric", Name: "Isometric"},
	{ID: "low-poly", Name: "Low poly"},
	{ID: "origami", Name: "Origami"},
	{ID: "line-art", Name: "Line art"},
	{ID: "modeling-compound", Name: "Craft clay"},
	{ID: "cinematic", Name: "Cinematic"},
	{ID: "3d-model", Name: "3D model"},
	{ID: "pixel-art", Name: "Pixel art"},
}

// SDXL sizes the endpoints accept.
var resolutions = []types.Resolution{
	{Width: 1024, Height: 1024},
	{Width: 1152, Height: 896},
	{Width: 1216, Height: 832},
	{Width: 1344, Height: 768},
	{Width: 1536, Height: 640},
	{Width: 640, Height: 1536},
	{Width: 768, Height: 1344},
	{Width: 832, Height: 1216},
	{Width: 896, Height: 1152},
}

var prompts = []string{
	"a lighthouse on a cliff at dusk, dramatic clouds, oil painting",
	"a red fox curled up in fresh snow, soft morning light",
	"an astronaut tending a rooftop garden in a neon city",
	"a steaming bowl of ramen on a wooden counter, studio photo",
	"an ancient library carved into a mountain, volumetric light",
	"a paper boat sailing across a puddle after the rain",
	"a cozy cabin interior with a crackling fireplace, watercolor",
	"a giant koi fish swimming through a cloudy sky",
	"a vintage motorcycle parked by a desert diner at noon",
	"a glass greenhouse full of glowing mushrooms at night",
	"a busy harbor market in the morning fog, isometric view",
	"a portrait of an owl wearing round spectacles, detailed ink",
}

func Samplers() []types.Sampler {
	return append([]types.Sampler(nil), samplers...)
}

func Styles() []types.Style {
	out := make([]types.Style, len(styles))
	for i, s := range styles {
		s.Image = stylePreviewURL + s.ID + ".png"
		out[i] = s
	}
	return out
}

func Resolutions() []types.Resolution {
	return append([]types.Resolution(nil), resolutions...)
}

func samplerByID(id string) (types.Sampler, bool) {
	for _, s := range samplers {
		if s.ID == id {
			return s, true
		}
	}
	return types.Sampler{}, false
}

func randomPrompt() string {
	return prompts[rand.IntN(len(prompts))]
}
