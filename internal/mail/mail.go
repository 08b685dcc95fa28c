package mail

// Message is a single transactional email. Attachments are base64-encoded on
// the wire, matching the provider's API shape.
type Message struct {
	To          string       `json:"to"`
	ToName      string       `json:"to_name,omitempty"`
	Subject     string       `json:"subject"`
	HTMLBody    string       `json:"html_body,omitempty"`
	TextBody    string       `json:"text_body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// SenderAPI is the narrow interface workflow services depend on.
type SenderAPI interface {
	Send(msg Message) error
}
