// Package chat declares what the bot needs from a chat platform.
package chat

import "context"

// Message is an inbound chat message.
type Message struct {
	ID         string
	AuthorID   string
	AuthorName string
	ChannelID  string
	// Private is true for one-to-one direct messages.
	Private bool
	Content string
}

// Member is one addressable member of the configured audience.
type Member struct {
	ID   string
	Name string
	Bot  bool
}

// Handler receives inbound messages.
type Handler func(ctx context.Context, m Message)

// Sender delivers outbound text.
type Sender interface {
	// SendChannel posts text to a shared channel.
	SendChannel(ctx context.Context, channelID, text string) error
	// SendDirect posts text to a user's private channel.
	SendDirect(ctx context.Context, userID, text string) error
}

// Directory enumerates the audience.
type Directory interface {
	Members(ctx context.Context) ([]Member, error)
}

// Humans filters out automated accounts.
func Humans(members []Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if !m.Bot {
			out = append(out, m)
		}
	}
	return out
}
