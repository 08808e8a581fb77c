package workshop

type ChatRequest struct {
	Text           string `json:"text" binding:"required"`
	ImageData      string `json:"image_data"`       // base64 payload, optional
	ImageMediaType string `json:"image_media_type"` // e.g. image/jpeg
}

type EstimateRequest struct {
	Location string `json:"location"`
}

type SearchRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Location string `json:"location"`
}
