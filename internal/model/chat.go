package model

// Chat event types sent to the chat webhook.
const (
	ChatEventInit    = "init"
	ChatEventMessage = "message"
)

// ChatMessage is one message relayed from the chat widget.
type ChatMessage struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message"`
	UserAgent string `json:"userAgent,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ReplySource records which part of the webhook response produced a reply.
type ReplySource string

const (
	ReplyFromMessage  ReplySource = "message"
	ReplyFromReply    ReplySource = "reply"
	ReplyFromResponse ReplySource = "response"
	ReplyFromText     ReplySource = "text"
	ReplyFromString   ReplySource = "string"
	ReplyFromRaw      ReplySource = "raw"
	ReplyFallback     ReplySource = "fallback"
)

// ChatReply is the bot answer returned to the chat widget.
type ChatReply struct {
	SessionID string      `json:"sessionId"`
	Content   string      `json:"content"`
	Source    ReplySource `json:"source"`
}
