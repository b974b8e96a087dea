package cohere

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MaxEmbedTexts is the largest number of texts accepted by one embed call.
const MaxEmbedTexts = 96

// EmbedRequest is the body of an embed call.
type EmbedRequest struct {
	Model    EmbedModel `json:"model,omitempty"`
	Texts    []string   `json:"texts" validate:"required,min=1,max=96"`
	Truncate Truncate   `json:"truncate,omitempty" validate:"omitempty,oneof=NONE START END"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed returns one embedding per input text, in input order.
func (c *Client) Embed(ctx context.Context, req *EmbedRequest) ([][]float64, error) {
	var resp embedResponse
	if err := c.post(ctx, "/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(req.Texts) {
		return nil, fmt.Errorf("embed returned %d embeddings for %d texts", len(resp.Embeddings), len(req.Texts))
	}
	return resp.Embeddings, nil
}

// EmbedBatch embeds any number of texts by splitting them into requests of
// at most MaxEmbedTexts, issued concurrently. Results keep input order.
func (c *Client) EmbedBatch(ctx context.Context, req *EmbedRequest) ([][]float64, error) {
	if len(req.Texts) <= MaxEmbedTexts {
		return c.Embed(ctx, req)
	}

	results := make([][]float64, len(req.Texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.embedConcurrency)

	for start := 0; start < len(req.Texts); start += MaxEmbedTexts {
		end := min(start+MaxEmbedTexts, len(req.Texts))
		batch := &EmbedRequest{
			Model:    req.Model,
			Texts:    req.Texts[start:end],
			Truncate: req.Truncate,
		}
		g.Go(func() error {
			embeddings, err := c.Embed(ctx, batch)
			if err != nil {
				return fmt.Errorf("embedding texts %d-%d: %w", start, end-1, err)
			}
			copy(results[start:end], embeddings)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
