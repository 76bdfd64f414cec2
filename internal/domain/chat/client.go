package chat

// MessageKind distinguishes inbound message payloads.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindVoice MessageKind = "voice"
)

// Inbound is a message delivered by the chat transport.
type Inbound struct {
	ChatID      int64
	DisplayName string
	Kind        MessageKind
	Text        string
	VoiceFileID string
}

// SendOptions control outbound message formatting.
type SendOptions struct {
	Markdown bool
}

// Client defines the outbound side of the chat transport. This decouples the
// application logic from the specific bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *SendOptions) (messageID string, err error)
	// VoiceFileURL resolves a voice attachment reference to a downloadable URL.
	VoiceFileURL(fileID string) (string, error)
}
