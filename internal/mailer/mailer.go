package mailer

import (
	"context"
	"errors"
)

// Message is a multipart email with a plain text and an HTML body.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msgs ...Message) error
}

var ErrNoRecipient = errors.New("message has no recipient")
