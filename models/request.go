package models

type IngestTextRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"source_type,omitempty"`
	SourceName string `json:"source_name,omitempty"`
}

type IngestWebsiteRequest struct {
	URL string `json:"url"`
}

type QueryRequest struct {
	Query            string `json:"query"`
	IncludeWebSearch *bool  `json:"include_web_search,omitempty"`
	SessionID        string `json:"sessionID,omitempty"`
}

type WebSearchRequest struct {
	Query string `json:"query"`
	Num   int    `json:"num,omitempty"`
}

type EvaluateRequest struct {
	Questions        []string `json:"questions"`
	IncludeWebSearch *bool    `json:"include_web_search,omitempty"`
}
