package cohere

import "context"

// DetectLanguageRequest is the body of a detect-language call.
type DetectLanguageRequest struct {
	Texts []string `json:"texts" validate:"required,min=1"`
}

// DetectLanguageResult is the language detected for one text.
type DetectLanguageResult struct {
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name"`
}

type detectLanguageResponse struct {
	Results []DetectLanguageResult `json:"results"`
}

// DetectLanguage identifies the language of each text.
func (c *Client) DetectLanguage(ctx context.Context, req *DetectLanguageRequest) ([]DetectLanguageResult, error) {
	var resp detectLanguageResponse
	if err := c.post(ctx, "/detect-language", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
