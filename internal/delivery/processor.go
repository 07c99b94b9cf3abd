// Package delivery turns rendered feed outputs into outbound Discord
// messages, editing in place where a message-id slot is cached.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/multierr"

	"feedwatch/internal/cache"
	"feedwatch/internal/feed"
)

const slotTTL = 36000 * time.Second

// Message is a previously sent outbound message as returned by Fetch.
type Message struct {
	ID               string
	Content          string
	EmbedDescription string
}

// Messenger is the outbound messaging endpoint.
type Messenger interface {
	Send(ctx context.Context, channelID, content string, embed *feed.Embed) (messageID string, err error)
	Edit(ctx context.Context, channelID, messageID, content string, embed *feed.Embed) error
	Fetch(ctx context.Context, channelID, messageID string) (*Message, error)
	Reply(ctx context.Context, channelID, messageID, content string) error
}

// Processor runs every registered source once per tick and delivers their
// outputs. Per-source failures never halt the tick; they are collected into
// one batched report for the operator channel.
type Processor struct {
	cache   cache.Cache
	msgr    Messenger
	sources []feed.Source
	log     *slog.Logger

	feedChannelID string
	logChannelID  string

	// resolveDelay keeps a just-edited resolution notice visible before the
	// closing reply and slot eviction.
	resolveDelay time.Duration
}

// New creates a Processor delivering to feedChannelID and reporting errors to
// logChannelID.
func New(c cache.Cache, m Messenger, feedChannelID, logChannelID string, log *slog.Logger) *Processor {
	return &Processor{
		cache:         c,
		msgr:          m,
		log:           log,
		feedChannelID: feedChannelID,
		logChannelID:  logChannelID,
		resolveDelay:  15 * time.Second,
	}
}

// SetResolveDelay overrides the default 15s post-edit settle delay.
func (p *Processor) SetResolveDelay(d time.Duration) {
	p.resolveDelay = d
}

// Add registers a source.
func (p *Processor) Add(s feed.Source) {
	p.sources = append(p.sources, s)
}

// ProcessAll runs one tick across all sources. If any source fails, exactly
// one batched report is sent to the operator channel after the loop.
func (p *Processor) ProcessAll(ctx context.Context) error {
	var report []string
	var errs error

	for _, src := range p.sources {
		out, err := src.Process(ctx)
		if err == nil && out != nil {
			err = p.deliver(ctx, src.Name(), out)
		}
		if err != nil {
			p.log.Error("feed failed", "source", src.Name(), "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			report = append(report,
				fmt.Sprintf("**[RSS:%s:Error]:** Feed failed with the following error:```\n%s\n```", src.Name(), err))
		}
	}

	if len(report) > 0 {
		if _, err := p.msgr.Send(ctx, p.logChannelID, strings.Join(report, "\n"), nil); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("send error report: %w", err))
		}
	}
	return errs
}

func (p *Processor) deliver(ctx context.Context, name string, out *feed.Output) error {
	switch out.Kind {
	case feed.StandaloneEmbed:
		// Always a fresh post; the message slot is never consulted.
		_, err := p.msgr.Send(ctx, p.feedChannelID, "", out.Embed)
		return err
	case feed.IncidentEmbed:
		return p.deliverIncident(ctx, name, out.Embed)
	case feed.PlainText:
		return p.deliverText(ctx, name, out.Text)
	default:
		return fmt.Errorf("unknown output kind %d", out.Kind)
	}
}

// deliverIncident posts a new incident embed or edits the one the cached
// slot points at. Once the rendered content announces a resolution, the slot
// is evicted so the next incident id starts fresh.
func (p *Processor) deliverIncident(ctx context.Context, name string, embed *feed.Embed) error {
	slotKey := feed.MsgIDKey(name)
	msgID, found, err := p.cache.Get(ctx, slotKey)
	if err != nil {
		return err
	}

	if !found {
		return p.sendAndSlot(ctx, slotKey, "", embed)
	}

	msg, err := p.msgr.Fetch(ctx, p.feedChannelID, msgID)
	if err != nil {
		// The tracked message is gone or unreachable; self-heal with a
		// fresh post and overwrite the slot.
		p.log.Warn("tracked message unreachable, posting fresh",
			"source", name, "message_id", msgID, "error", err)
		return p.sendAndSlot(ctx, slotKey, "", embed)
	}

	cachedContent, _, err := p.cache.Get(ctx, feed.ContentKey(name))
	if err != nil {
		return err
	}
	if cachedContent != msg.EmbedDescription {
		if err := p.msgr.Edit(ctx, p.feedChannelID, msgID, "", embed); err != nil {
			return err
		}
	}

	// Let the edit settle so a resolution notice stays visible before the
	// closing narration.
	p.sleep(ctx, p.resolveDelay)

	if feed.Resolved(embed.Description) {
		if err := p.msgr.Reply(ctx, p.feedChannelID, msgID, "This incident has been marked as resolved."); err != nil {
			p.log.Error("resolution reply", "source", name, "error", err)
		}
		return p.cache.Del(ctx, slotKey)
	}
	return nil
}

// deliverText edits the slotted message's text or posts a new one.
func (p *Processor) deliverText(ctx context.Context, name, text string) error {
	slotKey := feed.MsgIDKey(name)
	msgID, found, err := p.cache.Get(ctx, slotKey)
	if err != nil {
		return err
	}
	if found {
		return p.msgr.Edit(ctx, p.feedChannelID, msgID, text, nil)
	}
	return p.sendAndSlot(ctx, slotKey, text, nil)
}

func (p *Processor) sendAndSlot(ctx context.Context, slotKey, content string, embed *feed.Embed) error {
	id, err := p.msgr.Send(ctx, p.feedChannelID, content, embed)
	if err != nil {
		return err
	}
	return cache.Save(ctx, p.cache, slotKey, id, slotTTL)
}

func (p *Processor) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
