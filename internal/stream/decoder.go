package stream

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// discriminatorField names the field that selects the event variant.
const discriminatorField = "event_type"

// Decode maps one record to an Event. The discriminator is read first and the
// remaining fields are validated against that variant only; unknown fields are
// ignored. Failures are returned as *DecodeError.
func Decode(record []byte) (Event, error) {
	if len(bytes.TrimSpace(record)) == 0 {
		return nil, malformed(record, "", "empty record")
	}
	if !gjson.ValidBytes(record) {
		return nil, malformed(record, "", "invalid JSON")
	}

	root := gjson.ParseBytes(record)
	if !root.IsObject() {
		return nil, malformed(record, "", "record is not a JSON object")
	}

	tag := root.Get(discriminatorField)
	if !tag.Exists() {
		return nil, malformed(record, "", "missing %s", discriminatorField)
	}
	if tag.Type != gjson.String {
		return nil, malformed(record, "", "%s is not a string", discriminatorField)
	}

	d := fieldReader{record: record, eventType: tag.Str, obj: root}

	switch EventType(tag.Str) {
	case EventStreamStart:
		ev := &StreamStart{
			GenerationID: d.str("generation_id"),
			IsFinished:   d.boolean("is_finished"),
		}
		return d.result(ev)

	case EventTextGeneration:
		ev := &TextGeneration{
			IsFinished: d.boolean("is_finished"),
			Text:       d.str("text"),
		}
		return d.result(ev)

	case EventStreamEnd:
		ev := &StreamEnd{
			FinishReason: d.str("finish_reason"),
			IsFinished:   d.boolean("is_finished"),
		}
		if resp, ok := d.object("response"); ok {
			r := fieldReader{record: record, eventType: tag.Str, obj: resp, prefix: "response."}
			ev.Response = ChatResult{
				GenerationID: r.str("generation_id"),
				ResponseID:   r.str("response_id"),
				Text:         r.str("text"),
				TokenCount:   r.tokenCount("token_count"),
			}
			if r.err != nil {
				return nil, r.err
			}
		}
		return d.result(ev)

	default:
		return nil, &DecodeError{
			Kind:      ErrUnknownEventType,
			EventType: tag.Str,
			Record:    record,
			Reason:    "unrecognised " + discriminatorField,
		}
	}
}

// fieldReader pulls typed required fields out of a JSON object and keeps the
// first failure.
type fieldReader struct {
	record    []byte
	eventType string
	obj       gjson.Result
	prefix    string
	err       *DecodeError
}

func (r *fieldReader) get(name string) (gjson.Result, bool) {
	if r.err != nil {
		return gjson.Result{}, false
	}
	v := r.obj.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		r.err = malformed(r.record, r.eventType, "missing %s%s", r.prefix, name)
		return gjson.Result{}, false
	}
	return v, true
}

func (r *fieldReader) str(name string) string {
	v, ok := r.get(name)
	if !ok {
		return ""
	}
	if v.Type != gjson.String {
		r.err = malformed(r.record, r.eventType, "%s%s is not a string", r.prefix, name)
		return ""
	}
	return v.Str
}

func (r *fieldReader) boolean(name string) bool {
	v, ok := r.get(name)
	if !ok {
		return false
	}
	if !v.IsBool() {
		r.err = malformed(r.record, r.eventType, "%s%s is not a boolean", r.prefix, name)
		return false
	}
	return v.Bool()
}

func (r *fieldReader) object(name string) (gjson.Result, bool) {
	v, ok := r.get(name)
	if !ok {
		return gjson.Result{}, false
	}
	if !v.IsObject() {
		r.err = malformed(r.record, r.eventType, "%s%s is not an object", r.prefix, name)
		return gjson.Result{}, false
	}
	return v, true
}

// tokenCount decodes the optional usage block. Absent or null yields nil;
// anything else must be an object of integers.
func (r *fieldReader) tokenCount(name string) *TokenCount {
	if r.err != nil {
		return nil
	}
	v := r.obj.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsObject() {
		r.err = malformed(r.record, r.eventType, "%s%s is not an object", r.prefix, name)
		return nil
	}
	count := func(field string) int64 {
		f := v.Get(field)
		if !f.Exists() {
			return 0
		}
		if f.Type != gjson.Number && r.err == nil {
			r.err = malformed(r.record, r.eventType, "%s%s.%s is not a number", r.prefix, name, field)
		}
		return f.Int()
	}
	tc := &TokenCount{
		PromptTokens:   count("prompt_tokens"),
		ResponseTokens: count("response_tokens"),
		TotalTokens:    count("total_tokens"),
		BilledTokens:   count("billed_tokens"),
	}
	if r.err != nil {
		return nil
	}
	return tc
}

func (r *fieldReader) result(ev Event) (Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	return ev, nil
}
