package cohere

import "context"

// TokenizeRequest is the body of a tokenize call.
type TokenizeRequest struct {
	Text  string        `json:"text"`
	Model GenerateModel `json:"model,omitempty"`
}

// TokenizeResponse lists the tokens of a text and their string forms.
type TokenizeResponse struct {
	Tokens       []int64  `json:"tokens"`
	TokenStrings []string `json:"token_strings"`
}

// DetokenizeRequest is the body of a detokenize call.
type DetokenizeRequest struct {
	Tokens []int64       `json:"tokens" validate:"required,min=1"`
	Model  GenerateModel `json:"model,omitempty"`
}

type detokenizeResponse struct {
	Text string `json:"text"`
}

// Tokenize splits text into model tokens.
func (c *Client) Tokenize(ctx context.Context, req *TokenizeRequest) (*TokenizeResponse, error) {
	var resp TokenizeResponse
	if err := c.post(ctx, "/tokenize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detokenize turns tokens back into text.
func (c *Client) Detokenize(ctx context.Context, req *DetokenizeRequest) (string, error) {
	var resp detokenizeResponse
	if err := c.post(ctx, "/detokenize", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}
