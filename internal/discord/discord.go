// Package discord implements the outbound messaging endpoint over the
// Discord API.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"feedwatch/internal/delivery"
	"feedwatch/internal/feed"
)

// Client wraps a Discord session and implements delivery.Messenger.
type Client struct {
	session *discordgo.Session
	log     *slog.Logger
}

// New creates a Client from a bot token. The gateway is not opened yet; call
// Open.
func New(token string, log *slog.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Client{session: session, log: log}, nil
}

// Open connects to the Discord gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	c.log.Info("discord gateway connected")
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

// Send posts a message to the given channel and returns its id.
func (c *Client) Send(ctx context.Context, channelID, content string, embed *feed.Embed) (string, error) {
	send := &discordgo.MessageSend{Content: content}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toMessageEmbed(embed)}
	}
	msg, err := c.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

// Edit replaces the content or embed of an existing message.
func (c *Client) Edit(ctx context.Context, channelID, messageID, content string, embed *feed.Embed) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	if embed != nil {
		edit.SetEmbed(toMessageEmbed(embed))
	} else {
		edit.SetContent(content)
	}
	if _, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Fetch retrieves an existing message by id.
func (c *Client) Fetch(ctx context.Context, channelID, messageID string) (*delivery.Message, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	out := &delivery.Message{ID: msg.ID, Content: msg.Content}
	if len(msg.Embeds) > 0 {
		out.EmbedDescription = msg.Embeds[0].Description
	}
	return out, nil
}

// Reply posts a reply referencing an existing message.
func (c *Client) Reply(ctx context.Context, channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	if _, err := c.session.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("reply to message: %w", err)
	}
	return nil
}

func toMessageEmbed(e *feed.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
		Color:       e.Color,
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	if e.AuthorName != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.AuthorName, URL: e.AuthorURL}
	}
	if e.Thumbnail != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	return out
}
