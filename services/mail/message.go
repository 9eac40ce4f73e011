package mail

// Message is the transport-independent email payload. Every transport
// receives both bodies; the relay forwards them verbatim and SMTP
// sends HTML with a plain-text alternative.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}
