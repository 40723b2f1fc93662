package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	errs "likeswatch/pkg/errors"
)

// interaction wraps one component click and implements chat.Interaction
type interaction struct {
	client *Client
	ic     *discordgo.InteractionCreate
	postID string
}

func (in *interaction) RequesterID() string {
	// Guild clicks carry a member, direct-message clicks a bare user
	if in.ic.Member != nil && in.ic.Member.User != nil {
		return in.ic.Member.User.ID
	}
	if in.ic.User != nil {
		return in.ic.User.ID
	}
	return ""
}

func (in *interaction) PostID() string {
	return in.postID
}

func (in *interaction) MessageLink() string {
	guildID := in.ic.GuildID
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, in.ic.ChannelID, in.ic.Message.ID)
}

func (in *interaction) Acknowledge(ctx context.Context) error {
	err := in.client.session.InteractionRespond(in.ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to defer interaction response", err)
	}
	return nil
}

func (in *interaction) Respond(ctx context.Context, text string) error {
	_, err := in.client.session.InteractionResponseEdit(in.ic.Interaction, &discordgo.WebhookEdit{
		Content: &text,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to edit interaction response", err)
	}
	return nil
}

func (in *interaction) Refuse(ctx context.Context, text string) error {
	err := in.client.session.InteractionRespond(in.ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to refuse interaction", err)
	}
	return nil
}

// DisableControl greys out this control on the message that carried it
func (in *interaction) DisableControl(ctx context.Context) error {
	if in.ic.Message == nil {
		return nil
	}
	components := disableButton(in.ic.Message.Components, in.ic.MessageComponentData().CustomID)

	in.client.guard.Wait()
	_, err := in.client.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    in.ic.ChannelID,
		ID:         in.ic.Message.ID,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to disable control", err)
	}
	return nil
}

// disableButton rebuilds the component tree with the matching button disabled
func disableButton(components []discordgo.MessageComponent, customID string) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, comp := range components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			out = append(out, comp)
			continue
		}
		newRow := discordgo.ActionsRow{}
		for _, inner := range row.Components {
			if btn, ok := inner.(*discordgo.Button); ok && btn.CustomID == customID {
				copied := *btn
				copied.Disabled = true
				newRow.Components = append(newRow.Components, copied)
				continue
			}
			newRow.Components = append(newRow.Components, inner)
		}
		out = append(out, newRow)
	}
	return out
}
