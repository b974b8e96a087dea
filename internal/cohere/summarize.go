package cohere

import "context"

// SummarizeLength is the approximate length of a summary.
type SummarizeLength string

const (
	SummarizeLengthShort  SummarizeLength = "short"
	SummarizeLengthMedium SummarizeLength = "medium"
	SummarizeLengthLong   SummarizeLength = "long"
	SummarizeLengthAuto   SummarizeLength = "auto"
)

// SummarizeFormat is the layout of a summary.
type SummarizeFormat string

const (
	SummarizeFormatParagraph SummarizeFormat = "paragraph"
	SummarizeFormatBullets   SummarizeFormat = "bullets"
	SummarizeFormatAuto      SummarizeFormat = "auto"
)

// SummarizeExtractiveness controls how closely a summary reuses the input.
type SummarizeExtractiveness string

const (
	SummarizeExtractivenessLow    SummarizeExtractiveness = "low"
	SummarizeExtractivenessMedium SummarizeExtractiveness = "medium"
	SummarizeExtractivenessHigh   SummarizeExtractiveness = "high"
	SummarizeExtractivenessAuto   SummarizeExtractiveness = "auto"
)

// SummarizeRequest is the body of a summarize call.
type SummarizeRequest struct {
	Text              string                  `json:"text" validate:"required"`
	Length            SummarizeLength         `json:"length,omitempty" validate:"omitempty,oneof=short medium long auto"`
	Format            SummarizeFormat         `json:"format,omitempty" validate:"omitempty,oneof=paragraph bullets auto"`
	Model             GenerateModel           `json:"model,omitempty"`
	Extractiveness    SummarizeExtractiveness `json:"extractiveness,omitempty" validate:"omitempty,oneof=low medium high auto"`
	Temperature       *float64                `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=5"`
	AdditionalCommand string                  `json:"additional_command,omitempty"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize returns a summary of the text.
func (c *Client) Summarize(ctx context.Context, req *SummarizeRequest) (string, error) {
	var resp summarizeResponse
	if err := c.post(ctx, "/summarize", req, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}
