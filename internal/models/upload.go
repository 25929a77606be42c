package models

type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"` // Cloudinary public ID, used for deletion
}

type DeleteUploadRequest struct {
	Path string `json:"path"`
}

// EmailJob is a queued outbound email, consumed by the mailer worker.
type EmailJob struct {
	To   string `json:"to"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "verify" or "reset"
	Code string `json:"code"`
}
