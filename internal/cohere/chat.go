package cohere

import (
	"context"
	"fmt"

	"github.com/knoguchi/cohere/internal/stream"
)

// Role identifies the author of a chat history message.
type Role string

const (
	RoleUser    Role = "USER"
	RoleChatbot Role = "CHATBOT"
)

// ChatMessage is one prior turn of a conversation.
type ChatMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=USER CHATBOT"`
	Message string `json:"message"`
}

// UserMessage returns a history entry written by the user.
func UserMessage(msg string) ChatMessage {
	return ChatMessage{Role: RoleUser, Message: msg}
}

// ChatbotMessage returns a history entry written by the model.
func ChatbotMessage(msg string) ChatMessage {
	return ChatMessage{Role: RoleChatbot, Message: msg}
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	// Message is the user's message to the model.
	Message string `json:"message" validate:"required"`
	// Model defaults to command-r-plus on the server when empty.
	Model GenerateModel `json:"model,omitempty"`
	// Preamble replaces the default preamble when set.
	Preamble string `json:"preamble,omitempty"`
	// ChatHistory gives the model earlier turns of the conversation.
	ChatHistory []ChatMessage `json:"chat_history,omitempty" validate:"dive"`
	// ConversationID resumes a conversation stored on the server, creating
	// it if it does not exist.
	ConversationID   string           `json:"conversation_id,omitempty"`
	PromptTruncation PromptTruncation `json:"prompt_truncation,omitempty" validate:"omitempty,oneof=AUTO OFF"`
	CitationQuality  CitationQuality  `json:"citation_quality,omitempty" validate:"omitempty,oneof=accurate fast"`
	Temperature      *float64         `json:"temperature,omitempty" validate:"omitempty,gte=0"`
	MaxTokens        *int             `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	K                *int             `json:"k,omitempty" validate:"omitempty,gte=0,lte=500"`
}

// chatStreamRequest adds the stream flag to a chat request.
type chatStreamRequest struct {
	*ChatRequest
	Stream bool `json:"stream"`
}

// ChatResponse is the reply to a non-streaming chat call.
type ChatResponse = stream.ChatResult

// Chat sends a message and waits for the complete reply.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatStream sends a message and returns a stream of events as the reply is
// generated. The caller must Close the stream; closing it early cancels the
// HTTP request.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest) (*stream.Stream, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid chat request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := c.newRequest(ctx, "/chat", chatStreamRequest{ChatRequest: req, Stream: true})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.do(c.streamClient, httpReq)
	if err != nil {
		cancel()
		return nil, err
	}

	return stream.New(resp.Body,
		stream.WithContext(ctx),
		stream.WithCancel(cancel),
		stream.WithBufferSize(c.streamBufferSize),
		stream.WithLogger(c.logger),
	), nil
}
