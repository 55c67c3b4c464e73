// Package discord adapts a discordgo session to the bot's chat interfaces.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/pkg/logger"
)

// MessageLimit is Discord's maximum message length, less a margin for markup.
const MessageLimit = 1900

const membersPage = 1000

// ErrNoGuild is returned by Members when no guild is configured.
var ErrNoGuild = errors.New("no guild configured")

// Client wraps a Discord gateway session.
type Client struct {
	session *discordgo.Session
	guildID string
	logger  logger.Logger
}

// New creates a client for a bot token. The session is not opened yet.
func New(token, guildID string, l logger.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers
	if l == nil {
		l = logger.Get().Named("discord")
	}
	return &Client{session: session, guildID: guildID, logger: l}, nil
}

// OnMessage registers h for every message not written by a bot.
// It must be called before Open.
func (c *Client) OnMessage(ctx context.Context, h chat.Handler) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		h(ctx, toMessage(m.Message))
	})
	c.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.logger.Info(ctx, "logged in", logger.String("user", r.User.Username), logger.Int("guilds", len(r.Guilds)))
	})
}

// Open connects to the gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

// SendChannel posts text to a channel, splitting long messages.
func (c *Client) SendChannel(ctx context.Context, channelID, text string) error {
	for _, chunk := range chat.Split(text, MessageLimit) {
		if _, err := c.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send to channel %s: %w", channelID, err)
		}
	}
	return nil
}

// SendDirect opens (or reuses) the DM channel with userID and posts text.
func (c *Client) SendDirect(ctx context.Context, userID, text string) error {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, err)
	}
	return c.SendChannel(ctx, ch.ID, text)
}

// Members lists every member of the configured guild, bots included.
func (c *Client) Members(ctx context.Context) ([]chat.Member, error) {
	if c.guildID == "" {
		return nil, ErrNoGuild
	}
	var (
		out   []chat.Member
		after string
	)
	for {
		page, err := c.session.GuildMembers(c.guildID, after, membersPage, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list guild members: %w", err)
		}
		for _, m := range page {
			if m.User == nil {
				continue
			}
			out = append(out, toMember(m))
		}
		if len(page) < membersPage {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func toMessage(m *discordgo.Message) chat.Message {
	return chat.Message{
		ID:         m.ID,
		AuthorID:   m.Author.ID,
		AuthorName: displayName(m.Author, m.Member),
		ChannelID:  m.ChannelID,
		Private:    m.GuildID == "",
		Content:    m.Content,
	}
}

func toMember(m *discordgo.Member) chat.Member {
	return chat.Member{
		ID:   m.User.ID,
		Name: displayName(m.User, m),
		Bot:  m.User.Bot,
	}
}

// displayName prefers the guild nickname, then the global display name.
func displayName(u *discordgo.User, m *discordgo.Member) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
