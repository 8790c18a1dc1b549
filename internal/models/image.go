package models

type UploadImageResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type DeleteImagesRequest struct {
	PublicIDs []string `json:"publicIds"`
}

type ImageDeleteResult struct {
	PublicID string `json:"publicId"`
	Result   string `json:"result"`
}

// DeleteImagesResponse reports success for the batch as a whole; individual
// failures only show up in Deleted.
type DeleteImagesResponse struct {
	Success bool                `json:"success"`
	Deleted []ImageDeleteResult `json:"deleted"`
}
