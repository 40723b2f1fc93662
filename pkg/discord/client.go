// Package discord adapts the chat contract onto a Discord bot session.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"likeswatch/pkg/chat"
	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/ratelimit"
)

// Client implements chat.Backend over a single bot gateway session
type Client struct {
	session *discordgo.Session
	guard   ratelimit.Limiter
	logger  logger.Logger
	handler chat.InteractionHandler
}

// New creates a client for the given bot token. The guard paces every
// outbound REST call so sweeps and interactions share one send budget.
func New(token string, guard ratelimit.Limiter, log logger.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStartup, "failed to create bot session", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return &Client{session: session, guard: guard, logger: log}, nil
}

// OnLikeRequest installs the handler for like-control clicks. Must be called
// before Open.
func (c *Client) OnLikeRequest(h chat.InteractionHandler) {
	c.handler = h
}

// Open connects the gateway and installs the component-interaction listener.
// The listener is registered once and lives for the whole session.
func (c *Client) Open() error {
	c.session.AddHandler(c.handleInteraction)
	if err := c.session.Open(); err != nil {
		return errs.Wrap(errs.ErrorTypeStartup, "failed to open gateway connection", err)
	}
	c.logger.Info("discord gateway connected")
	return nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

// ChannelExists resolves the channel through the REST API
func (c *Client) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return false, nil
		}
		return false, errs.Wrap(errs.ErrorTypeTransport, "failed to resolve channel", err)
	}
	return ch != nil, nil
}

func (c *Client) SendMessage(ctx context.Context, channelID string, msg chat.Message) (string, error) {
	c.guard.Wait()

	sent, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     buildEmbeds(msg.Embeds),
		Components: buildComponents(msg.Buttons),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeTransport, "failed to send channel message", err)
	}
	return sent.ID, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, msg chat.Message) error {
	c.guard.Wait()

	content := msg.Content
	embeds := buildEmbeds(msg.Embeds)
	components := buildComponents(msg.Buttons)
	_, err := c.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to edit message", err)
	}
	return nil
}

func (c *Client) SendDirectMessage(ctx context.Context, userID string, msg chat.Message) error {
	c.guard.Wait()

	dm, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to open direct message channel", err)
	}
	_, err = c.session.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     buildEmbeds(msg.Embeds),
		Components: buildComponents(msg.Buttons),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to send direct message", err)
	}
	return nil
}

func (c *Client) handleInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionMessageComponent {
		return
	}
	postID, ok := chat.ParseLikeCustomID(ic.MessageComponentData().CustomID)
	if !ok {
		return
	}
	if c.handler == nil {
		c.logger.Warn("like control clicked but no handler installed")
		return
	}
	c.handler(context.Background(), &interaction{client: c, ic: ic, postID: postID})
}

func buildEmbeds(embeds []chat.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		if e.AuthorName != "" {
			embed.Author = &discordgo.MessageEmbedAuthor{
				Name:    e.AuthorName,
				URL:     e.AuthorURL,
				IconURL: e.AuthorIconURL,
			}
		}
		if e.ImageURL != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
		}
		if e.FooterText != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.FooterText}
		}
		if e.Timestamp != nil {
			embed.Timestamp = e.Timestamp.Format("2006-01-02T15:04:05Z07:00")
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, embed)
	}
	return out
}

func buildComponents(buttons []chat.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		btn := discordgo.Button{
			Label:    b.Label,
			Disabled: b.Disabled,
		}
		if b.TargetURL != "" {
			btn.Style = discordgo.LinkButton
			btn.URL = b.TargetURL
		} else {
			btn.Style = discordgo.PrimaryButton
			btn.CustomID = b.CustomID
		}
		row.Components = append(row.Components, btn)
	}
	return []discordgo.MessageComponent{row}
}
