package pairing

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
)

// Entry is one prompt from the user paired with the assistant's reply.
// Prompt is never empty; Response is empty when no reply was exported.
type Entry struct {
	ID       string `json:"id"`
	ChatID   string `json:"chatId"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

type state int

const (
	scanningForUser state = iota
	accumulatingPrompt
	accumulatingResponse
)

// pending is the entry being assembled.
type pending struct {
	prompt      []string
	response    []string
	userID      string
	assistantID string
}

// finalize picks the entry id: first assistant id, else first user id,
// else "<chatID>:<ordinal>".
func (p *pending) finalize(chatID string, ordinal int) Entry {
	id := p.assistantID
	if id == "" {
		id = p.userID
	}
	if id == "" {
		id = fmt.Sprintf("%s:%d", chatID, ordinal)
	}
	return Entry{
		ID:       id,
		ChatID:   chatID,
		Prompt:   strings.TrimSpace(strings.Join(p.prompt, "\n")),
		Response: strings.TrimSpace(strings.Join(p.response, "\n")),
	}
}

// Pair collapses an ordered, filtered message sequence into entries. It makes
// a single forward pass; consecutive user messages merge into one prompt and
// consecutive assistant messages merge into one response. Assistant messages
// that arrive before any user message are dropped.
func Pair(chatID string, msgs []export.Message) []Entry {
	var (
		entries []Entry
		cur     pending
		st      = scanningForUser
	)

	for i := 0; i < len(msgs); {
		m := msgs[i]

		switch st {
		case scanningForUser:
			if m.Role == export.RoleUser && strings.TrimSpace(m.Text) != "" {
				cur = pending{prompt: []string{m.Text}, userID: m.ID}
				st = accumulatingPrompt
			}
			i++

		case accumulatingPrompt:
			switch m.Role {
			case export.RoleUser:
				cur.prompt = append(cur.prompt, m.Text)
				if cur.userID == "" {
					cur.userID = m.ID
				}
				i++
			case export.RoleAssistant:
				// Re-read this message as the first chunk of the response.
				st = accumulatingResponse
			default:
				i++
			}

		case accumulatingResponse:
			switch m.Role {
			case export.RoleAssistant:
				cur.response = append(cur.response, m.Text)
				if cur.assistantID == "" {
					cur.assistantID = m.ID
				}
				i++
			case export.RoleUser:
				// The user message starts the next entry; it is not consumed here.
				entries = append(entries, cur.finalize(chatID, len(entries)))
				st = scanningForUser
			default:
				i++
			}
		}
	}

	if st != scanningForUser {
		entries = append(entries, cur.finalize(chatID, len(entries)))
	}
	return entries
}
