package models

// SerperSearchRequest is the request body for the Serper search API.
type SerperSearchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

// SerperOrganicResult is a single organic hit in a Serper response.
type SerperOrganicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SerperSearchResponse carries the subset of the Serper payload we use.
type SerperSearchResponse struct {
	Organic []SerperOrganicResult `json:"organic"`
}
