package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Chat message
type ResponseString struct {
	string
}

// Rich message
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

type Response interface {
	Send(ctx context.Context, channelid string, discord *discordgo.Session) error
}

func (response ResponseString) Send(ctx context.Context, channelid string, discord *discordgo.Session) error {
	if _, err := discord.ChannelMessageSend(channelid, response.string, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("could not send message to channel %s: %w", channelid, err)
	}
	return nil
}

func (response ResponseEmbed) Send(ctx context.Context, channelid string, discord *discordgo.Session) error {
	if _, err := discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("could not send embed %q to channel %s: %w", response.Title, channelid, err)
	}
	return nil
}

// Posts the tracker messages on a fixed channel
type ChannelNotifier struct {
	discord   *discordgo.Session
	channelid string
}

func NewChannelNotifier(discord *discordgo.Session, channelid string) *ChannelNotifier {
	return &ChannelNotifier{discord: discord, channelid: channelid}
}

func (notifier *ChannelNotifier) Notify(ctx context.Context, text string) error {
	return ResponseString{text}.Send(ctx, notifier.channelid, notifier.discord)
}
