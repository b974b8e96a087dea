package cohere

import "context"

// ClassifyExample is a labelled example used to classify inputs.
type ClassifyExample struct {
	Text  string `json:"text" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// ClassifyRequest is the body of a classify call.
type ClassifyRequest struct {
	// Inputs are the texts to classify.
	Inputs []string `json:"inputs" validate:"required,min=1"`
	// Examples label sample texts; each label needs at least two examples.
	Examples []ClassifyExample `json:"examples,omitempty" validate:"dive"`
	Model    EmbedModel        `json:"model,omitempty"`
	Preset   string            `json:"preset,omitempty"`
	Truncate Truncate          `json:"truncate,omitempty" validate:"omitempty,oneof=NONE START END"`
}

// LabelProperties holds the confidence for one label.
type LabelProperties struct {
	Confidence float64 `json:"confidence"`
}

// Classification is the result for one input.
type Classification struct {
	ID         string                     `json:"id"`
	Input      string                     `json:"input"`
	Prediction string                     `json:"prediction"`
	Confidence float64                    `json:"confidence"`
	Labels     map[string]LabelProperties `json:"labels"`
}

type classifyResponse struct {
	Classifications []Classification `json:"classifications"`
}

// Classify predicts a label for each input.
func (c *Client) Classify(ctx context.Context, req *ClassifyRequest) ([]Classification, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", req, &resp); err != nil {
		return nil, err
	}
	return resp.Classifications, nil
}
