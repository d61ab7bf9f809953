package domain

// Image is a product picture stored on the image host.
type Image struct {
	Object      string `json:"object"`
	URL         string `json:"url"`
	ContentType string `json:"type"`
	Size        int64  `json:"size"`
}
