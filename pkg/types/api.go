package types

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type GenerateRequest struct {
	Input GenerationInput `json:"input"`
	Count int             `json:"count,omitempty"`
}

// GeneratedImage is one artifact of a generation. Input is the resolved
// input with the per-sample seed applied.
type GeneratedImage struct {
	ID           string          `json:"id"`
	Seed         int64           `json:"seed"`
	FinishReason string          `json:"finishReason"`
	Base64       string          `json:"base64"`
	Input        GenerationInput `json:"input"`
}

type GenerationResult struct {
	ID     string           `json:"id"`
	Images []GeneratedImage `json:"images"`
}

// StoredImage is an artifact read back from the object store; its ID is the
// object key.
type StoredImage struct {
	ID     string `json:"id"`
	Base64 string `json:"base64"`
}

type StoredGeneration struct {
	ID        string          `json:"id"`
	Input     GenerationInput `json:"input"`
	Images    []StoredImage   `json:"images"`
	NextToken *string         `json:"exclusiveStartImageID,omitempty"`
}

type ListGenerationsResponse struct {
	Generations []StoredGeneration `json:"generations"`
	Limit       int                `json:"limit"`
	NextToken   *string            `json:"nextToken,omitempty"`
}

type DeleteGenerationRequest struct {
	GenerationID string   `json:"generationId,omitempty"`
	ObjectKeys   []string `json:"objectKeys"`
}

type DeleteGenerationResponse struct {
	GenerationID string  `json:"generationId"`
	Requested    int     `json:"requested"`
	Deleted      int     `json:"deleted"`
	IndexRemoved bool    `json:"indexRemoved"`
	Warning      *string `json:"warning,omitempty"`
}

type StatusIndicator string

const (
	StatusOK      StatusIndicator = "ok"
	StatusWarning StatusIndicator = "warning"
)

type Status struct {
	Indicator StatusIndicator `json:"indicator"`
	Text      string          `json:"text"`
}

type SetSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
