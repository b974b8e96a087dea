package cohere

import "context"

// RerankRequest is the body of a rerank call.
type RerankRequest struct {
	// Query is the search query.
	Query string `json:"query" validate:"required"`
	// Documents are the candidates to order by relevance.
	Documents []string `json:"documents" validate:"required,min=1"`
	// Model defaults to DefaultRerankModel.
	Model RerankModel `json:"model"`
	// TopN limits the results; all documents are returned when nil.
	TopN *int `json:"top_n,omitempty" validate:"omitempty,gt=0"`
	// MaxChunksPerDoc caps how many chunks are derived from each document.
	MaxChunksPerDoc *int `json:"max_chunks_per_doc,omitempty" validate:"omitempty,gt=0"`
}

// RerankResult scores one input document.
type RerankResult struct {
	// Index is the position of the document in RerankRequest.Documents.
	Index int `json:"index"`
	// RelevanceScore is the relevance to the query, from 0 to 1.
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []RerankResult `json:"results"`
}

// Rerank scores documents by relevance to the query. Results are returned
// in the order the server ranks them, most relevant first.
func (c *Client) Rerank(ctx context.Context, req *RerankRequest) ([]RerankResult, error) {
	body := *req
	if body.Model == "" {
		body.Model = DefaultRerankModel
	}

	var resp rerankResponse
	if err := c.post(ctx, "/rerank", &body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
