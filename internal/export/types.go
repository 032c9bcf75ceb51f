package export

import "time"

// Roles that take part in prompt/response pairing. Any other author role is noise.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single normalized turn, shared by both conversation encodings.
type Message struct {
	ID      string // empty when the export carried no id
	Role    string
	Text    string
	Created time.Time // zero when the export timestamp was missing or unusable
}

// Encoding indicates which conversation shape a record used.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingMessages
	EncodingMapping
)

func (e Encoding) String() string {
	switch e {
	case EncodingMessages:
		return "messages"
	case EncodingMapping:
		return "mapping"
	default:
		return "none"
	}
}

// ProjectTag is the project a conversation belongs to, either carried by the
// export or synthesized from a membership map.
type ProjectTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Conversation is one export record after adaptation. Messages are in source
// order; they are not yet guaranteed to be chronological.
type Conversation struct {
	Index    int // position in the export array
	ID       string
	Title    string
	Created  time.Time
	Updated  time.Time
	Project  *ProjectTag
	Encoding Encoding
	Messages []Message
}
