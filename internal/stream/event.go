// Package stream reassembles the chat streaming response body into typed events.
//
// The server writes one JSON object per line and keeps the connection open
// until generation ends. A Framer splits the body into records, Decode turns a
// record into an Event, and a Stream runs both in a relay goroutine that feeds
// a bounded channel read by the consumer through Recv.
package stream

// EventType is the value of the event_type discriminator.
type EventType string

const (
	EventStreamStart    EventType = "stream-start"
	EventTextGeneration EventType = "text-generation"
	EventStreamEnd      EventType = "stream-end"
)

// Event is one decoded record of a chat stream. The set of implementations is
// closed: *StreamStart, *TextGeneration and *StreamEnd.
type Event interface {
	// Type returns the discriminator the event was decoded from.
	Type() EventType
	// Finished reports the record's is_finished flag.
	Finished() bool

	isEvent()
}

// StreamStart opens a stream.
type StreamStart struct {
	GenerationID string
	IsFinished   bool
}

// TextGeneration carries one fragment of generated text. Consumers
// concatenate Text in order to rebuild the reply.
type TextGeneration struct {
	IsFinished bool
	Text       string
}

// StreamEnd closes a stream and carries the full response.
type StreamEnd struct {
	FinishReason string
	IsFinished   bool
	Response     ChatResult
}

// ChatResult is a complete chat reply. It is also the body of a non-streaming
// chat response.
type ChatResult struct {
	GenerationID string      `json:"generation_id"`
	ResponseID   string      `json:"response_id"`
	Text         string      `json:"text"`
	TokenCount   *TokenCount `json:"token_count,omitempty"`
}

// TokenCount is the optional usage block attached to a ChatResult.
type TokenCount struct {
	PromptTokens   int64 `json:"prompt_tokens"`
	ResponseTokens int64 `json:"response_tokens"`
	TotalTokens    int64 `json:"total_tokens"`
	BilledTokens   int64 `json:"billed_tokens"`
}

func (*StreamStart) Type() EventType    { return EventStreamStart }
func (*TextGeneration) Type() EventType { return EventTextGeneration }
func (*StreamEnd) Type() EventType      { return EventStreamEnd }

func (e *StreamStart) Finished() bool    { return e.IsFinished }
func (e *TextGeneration) Finished() bool { return e.IsFinished }
func (e *StreamEnd) Finished() bool      { return e.IsFinished }

func (*StreamStart) isEvent()    {}
func (*TextGeneration) isEvent() {}
func (*StreamEnd) isEvent()      {}
