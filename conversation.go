package arthax

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// ChatEndpoint is the endpoint of the chat agent.
const ChatEndpoint = "chat_agent"

// Chat fallback replies, appended when the exchange fails.
const (
	MsgChatApology   = "Sorry, I could not answer that: %s"
	MsgChatOffline   = "Sorry, I am having trouble connecting right now. Please try again."
	MsgChatNoReply   = "Sorry, I did not get an answer."
	chatDefaultError = "The assistant could not process your message."
)

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation log.
type Message struct {
	Role     Role
	Text     string
	Sequence int
}

// chatRequest is the body of a chat exchange. History is never replayed: the
// log is kept for display only.
type chatRequest struct {
	UserMessage string   `json:"user_message"`
	ChatHistory []string `json:"chat_history"`
	UserID      string   `json:"user_id"`
}

// Conversation owns the append-only chat log. Submit and the resolution
// callbacks run on the loop.
type Conversation struct {
	identity func() (Identity, bool)
	caller   Caller
	loop     *Loop
	notifier Notifier
	view     LogView
	composer Composer

	log []Message
}

// Log returns a copy of the conversation log.
func (c *Conversation) Log() []Message {
	return append([]Message(nil), c.log...)
}

func (c *Conversation) append(role Role, text string) {
	m := Message{Role: role, Text: text, Sequence: len(c.log) + 1}
	c.log = append(c.log, m)
	if c.view != nil {
		c.view.Append(m)
		c.view.ScrollToEnd()
	}
}

// Submit appends the user message, sends it, and appends the reply once the
// exchange resolves. Every submitted message gets exactly one reply, a
// fallback one if the exchange fails. Blank text is ignored.
func (c *Conversation) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	id, ok := c.identity()
	if !ok {
		c.notifier.Notify(MsgNoIdentity, KindError)
		return
	}

	c.append(RoleUser, text)
	if c.composer != nil {
		c.composer.Clear()
	}

	req := Request{
		Endpoint:       ChatEndpoint,
		Payload:        chatRequest{UserMessage: text, ChatHistory: []string{}, UserID: id.ID},
		DefaultMessage: chatDefaultError,
	}
	Go(ctx, c.loop, c.caller, req, c.reply)
}

func (c *Conversation) reply(o Outcome) {
	switch o.Kind {
	case Success:
		text, ok := o.Envelope.String("response")
		if !ok || strings.TrimSpace(text) == "" {
			c.append(RoleAssistant, MsgChatNoReply)
			c.notifier.Notify(chatDefaultError, KindError)
			return
		}
		c.append(RoleAssistant, text)
	case ApplicationFailure:
		c.append(RoleAssistant, fmt.Sprintf(MsgChatApology, o.Message()))
		c.notifier.Notify(o.Message(), KindError)
	default:
		log.Printf("chat: %v", o.Err)
		c.append(RoleAssistant, MsgChatOffline)
		c.notifier.Notify(MsgNetworkError, KindError)
	}
}
