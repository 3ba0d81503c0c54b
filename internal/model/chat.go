package model

// CandidateChunk is one ranked vector-search hit, enriched with the parent
// document's display metadata for citation building.
type CandidateChunk struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Title      string  `json:"title"`
	URI        string  `json:"uri"`
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// SearchFilters narrows retrieval before access filtering is applied.
type SearchFilters struct {
	DocType   string `json:"doc_type,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// Citation points at a document that passed the access filter for the
// requesting user. The excerpt is a verbatim prefix of the source chunk.
type Citation struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	Page       int    `json:"page,omitempty"`
	Excerpt    string `json:"excerpt"`
}

type ChatResult struct {
	Answer       string     `json:"answer"`
	Citations    []Citation `json:"citations"`
	QueryTimeMS  int64      `json:"query_time_ms"`
	TotalResults int        `json:"total_results"`
}
