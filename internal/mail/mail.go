package mail

// Message is an outbound plain-text email.
type Message struct {
	To      string
	From    string
	Subject string
	Text    string
}

// Sender delivers email. Implementations are external collaborators; a
// delivery failure is a transient upstream error, never a data error.
type Sender interface {
	Send(msg Message) error
}
