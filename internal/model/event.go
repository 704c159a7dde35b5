package model

// Turn is one prior exchange in a conversation, role "user" or "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IncomingMessage is a surface-agnostic chat message extracted by a webhook
// receiver. Text has any leading bot mention already stripped.
type IncomingMessage struct {
	Surface    string `json:"surface"` // slack | gchat
	Text       string `json:"text"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	ChannelID  string `json:"channel_id"`
	ThreadID   string `json:"thread_id,omitempty"`
	MessageTS  string `json:"message_ts,omitempty"`
}

// ChatReply is the final outcome of handling one chat message.
type ChatReply struct {
	Message      string         `json:"message"`
	ActionsTaken []string       `json:"actions_taken,omitempty"`
	Results      []ActionResult `json:"results,omitempty"`
	Plan         *Plan          `json:"plan,omitempty"`
}
