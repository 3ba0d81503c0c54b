package model

const (
	DocumentStatusUploaded            = "uploaded"
	DocumentStatusProcessingRequested = "processing_requested"
	DocumentStatusProcessing          = "processing"
	DocumentStatusProcessed           = "processed"
	DocumentStatusFailed              = "failed"
	DocumentStatusDeleted             = "deleted"
)

// Document is a piece of indexed content. ClientID/ProjectID are empty for
// legacy documents uploaded before tenancy existed; those are globally
// visible unless strict ownership is enabled.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URI       string `json:"uri"`
	DocType   string `json:"doc_type"`
	Status    string `json:"status"`
	ClientID  string `json:"client_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	FileKey   string `json:"-"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedBy string `json:"created_by"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

// Ownership is the slice of document metadata the access filter needs.
type Ownership struct {
	DocumentID string
	ClientID   string
	ProjectID  string
}

// Chunk is a retrievable fragment of a document's extracted text. Chunks
// are immutable; re-processing replaces a document's chunks wholesale.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Position   int       `json:"position"`
	Page       int       `json:"page"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
	Ctime      int64     `json:"ctime"`
}
