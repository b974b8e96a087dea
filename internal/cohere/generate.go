package cohere

import "context"

// GenerateRequest is the body of a generate call.
type GenerateRequest struct {
	// Prompt is the text the model continues.
	Prompt string        `json:"prompt" validate:"required"`
	Model  GenerateModel `json:"model,omitempty"`
	// NumGenerations is the number of completions to return, 1 to 5.
	NumGenerations *int `json:"num_generations,omitempty" validate:"omitempty,gte=1,lte=5"`
	MaxTokens         *int              `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Preset            string            `json:"preset,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=5"`
	K                 *int              `json:"k,omitempty" validate:"omitempty,gte=0,lte=500"`
	P                 *float64          `json:"p,omitempty" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty  *float64          `json:"frequency_penalty,omitempty" validate:"omitempty,gte=0,lte=1"`
	PresencePenalty   *float64          `json:"presence_penalty,omitempty" validate:"omitempty,gte=0,lte=1"`
	EndSequences      []string          `json:"end_sequences,omitempty"`
	StopSequences     []string          `json:"stop_sequences,omitempty"`
	ReturnLikelihoods ReturnLikelihoods `json:"return_likelihoods,omitempty" validate:"omitempty,oneof=GENERATION ALL NONE"`
	LogitBias         map[int]float64   `json:"logit_bias,omitempty"`
	Truncate          Truncate          `json:"truncate,omitempty" validate:"omitempty,oneof=NONE START END"`
}

// Generation is one completion returned by generate.
type Generation struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Likelihood       *float64          `json:"likelihood,omitempty"`
	TokenLikelihoods []TokenLikelihood `json:"token_likelihoods,omitempty"`
}

// TokenLikelihood is the log-likelihood of a single token.
type TokenLikelihood struct {
	Token      string  `json:"token"`
	Likelihood float64 `json:"likelihood"`
}

type generateResponse struct {
	Generations []Generation `json:"generations"`
}

// Generate returns completions for a prompt.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) ([]Generation, error) {
	var resp generateResponse
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, err
	}
	return resp.Generations, nil
}
