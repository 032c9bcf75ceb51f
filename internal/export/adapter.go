package export

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var (
	ErrNotObject = errors.New("record is not an object")
	ErrMissingID = errors.New("record has no id")
)

// defaultRole is assumed for messages whose author role is missing.
const defaultRole = RoleAssistant

// Decode adapts one export record into a Conversation. Only a record without a
// usable id is rejected; every other missing field degrades to its zero value.
func Decode(rec Record) (Conversation, error) {
	r := rec.Result()
	if !r.IsObject() {
		return Conversation{}, ErrNotObject
	}

	id := r.Get("id")
	if id.Type != gjson.String || strings.TrimSpace(id.Str) == "" {
		return Conversation{}, ErrMissingID
	}

	c := Conversation{
		Index:   rec.Index,
		ID:      id.Str,
		Created: ToInstant(r.Get("create_time").Value()),
		Updated: ToInstant(r.Get("update_time").Value()),
		Project: ParseTag(r.Get("project")),
	}
	if title := r.Get("title"); title.Type == gjson.String {
		c.Title = title.Str
	}
	c.Encoding, c.Messages = adaptMessages(r)
	return c, nil
}

// DetectEncoding reports which message encoding a record carries. A present
// messages array wins over a mapping, even when the array is empty.
func DetectEncoding(r gjson.Result) Encoding {
	if r.Get("messages").IsArray() {
		return EncodingMessages
	}
	if r.Get("mapping").IsObject() {
		return EncodingMapping
	}
	return EncodingNone
}

// adaptMessages flattens either encoding into messages in source order. For
// the mapping graph that is the order nodes appear in the document, which is
// not chronological.
func adaptMessages(r gjson.Result) (Encoding, []Message) {
	enc := DetectEncoding(r)

	var msgs []Message
	switch enc {
	case EncodingMessages:
		r.Get("messages").ForEach(func(_, m gjson.Result) bool {
			msgs = append(msgs, adaptMessage(m))
			return true
		})
	case EncodingMapping:
		r.Get("mapping").ForEach(func(_, node gjson.Result) bool {
			// Structural nodes carry no message and are not counted.
			if m := node.Get("message"); m.IsObject() {
				msgs = append(msgs, adaptMessage(m))
			}
			return true
		})
	}
	return enc, msgs
}

func adaptMessage(m gjson.Result) Message {
	msg := Message{
		ID:      idString(m.Get("id")),
		Role:    defaultRole,
		Text:    ExtractText(decodeContent(m.Get("content"))),
		Created: ToInstant(m.Get("create_time").Value()),
	}
	if role := m.Get("author.role"); role.Type == gjson.String {
		msg.Role = role.Str
	}
	return msg
}

// decodeContent turns the raw content into plain Go values. Objects carrying
// parts or text are decoded (numbers kept as json.Number); any other
// non-string value stays compacted source JSON so the serialized fallback keeps
// its key order and number spelling.
func decodeContent(c gjson.Result) any {
	switch c.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return c.Str
	}
	if !c.IsObject() || !(c.Get("parts").IsArray() || c.Get("text").Type == gjson.String) {
		return json.RawMessage(pretty.Ugly([]byte(c.Raw)))
	}

	dec := json.NewDecoder(strings.NewReader(c.Raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return c.Raw
	}
	return v
}

func idString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// ParseTag reads a project tag. Null, missing and malformed tags all mean
// "untagged"; a tag without a name is named after its id.
func ParseTag(p gjson.Result) *ProjectTag {
	if !p.IsObject() {
		return nil
	}
	id := p.Get("id")
	if id.Type != gjson.String || id.Str == "" {
		return nil
	}
	tag := &ProjectTag{ID: id.Str, Name: id.Str}
	if name := p.Get("name"); name.Type == gjson.String && name.Str != "" {
		tag.Name = name.Str
	}
	return tag
}
