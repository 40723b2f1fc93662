// Package chat defines the backend-neutral contract between the relay engine
// and whichever chat service carries its notifications.
package chat

import (
	"context"
	"time"
)

// Field is one name/value pair rendered inside an embed
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich content card. Zero-valued members are omitted on render.
type Embed struct {
	Title         string
	Description   string
	URL           string
	Color         int
	AuthorName    string
	AuthorURL     string
	AuthorIconURL string
	ImageURL      string
	FooterText    string
	Timestamp     *time.Time
	Fields        []Field
}

// Button is an interactive or link control attached to a message. A non-empty
// TargetURL makes it a link button; otherwise CustomID routes its clicks.
type Button struct {
	Label     string
	CustomID  string
	TargetURL string
	Disabled  bool
}

// Message is one outbound notification
type Message struct {
	Content string
	Embeds  []Embed
	Buttons []Button
}

// Backend sends messages into the chat service
type Backend interface {
	// ChannelExists reports whether the channel id resolves on the service
	ChannelExists(ctx context.Context, channelID string) (bool, error)

	// SendMessage posts to a channel and returns the created message's id
	SendMessage(ctx context.Context, channelID string, msg Message) (string, error)

	// EditMessage replaces a previously sent message's content in place
	EditMessage(ctx context.Context, channelID, messageID string, msg Message) error

	// SendDirectMessage opens (or reuses) a DM channel with the user and
	// posts to it
	SendDirectMessage(ctx context.Context, userID string, msg Message) error
}

// Interaction is one button click delivered by the chat service. Acknowledge
// must be called before any slow work; Respond and Refuse complete the
// exchange.
type Interaction interface {
	// RequesterID identifies the clicking user
	RequesterID() string

	// PostID is the post the clicked control refers to
	PostID() string

	// MessageLink is a jump link to the message carrying the control
	MessageLink() string

	// Acknowledge defers the visible response so slow work can follow
	Acknowledge(ctx context.Context) error

	// Respond sets or updates the deferred response text
	Respond(ctx context.Context, text string) error

	// Refuse answers an unauthorized click without touching the control
	Refuse(ctx context.Context, text string) error

	// DisableControl greys out the clicked button on the original message
	DisableControl(ctx context.Context) error
}

// InteractionHandler consumes delivered interactions
type InteractionHandler func(ctx context.Context, in Interaction)
