package models

type IngestResponse struct {
	Message     string `json:"message"`
	SourceType  string `json:"source_type,omitempty"`
	SourceName  string `json:"source_name,omitempty"`
	ChunksAdded int    `json:"chunks_added"`
	Error       string `json:"error,omitempty"`
}

type QueryResponse struct {
	Answer             string   `json:"answer"`
	Sources            []Source `json:"sources,omitempty"`
	VectorResultsCount int      `json:"vector_results_count"`
	WebResultsCount    int      `json:"web_results_count"`
	SessionID          string   `json:"sessionID"`
	Error              string   `json:"error,omitempty"`
}

type DocumentsResponse struct {
	Count     int              `json:"count"`
	Documents []StoredDocument `json:"documents"`
}

type WebSearchResponse struct {
	Count   int         `json:"count"`
	Results []WebResult `json:"results"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}
