// Package slackbot serves the analysis service as Slack slash commands over
// Socket Mode.
package slackbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"sentiboard/internal/config"
	"sentiboard/internal/service"
)

const (
	cmdAnalyze = "/sentiment"
	cmdExport  = "/sentiment-export"
	cmdStats   = "/sentiment-stats"
	cmdHelp    = "/sentiment-help"
)

// slackAPI is the part of *slack.Client the bot calls.
type slackAPI interface {
	PostEphemeral(channelID, userID string, options ...slack.MsgOption) (string, error)
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UploadFileV2(params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

type Bot struct {
	api      slackAPI
	svc      *service.Service
	timeout  time.Duration
	loc      *time.Location
	inflight *inflightGuard
}

func NewBot(cfg config.Config, svc *service.Service, api slackAPI) *Bot {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:      api,
		svc:      svc,
		timeout:  2 * time.Duration(cfg.ExternalHTTPTimeoutSeconds) * time.Second,
		loc:      loc,
		inflight: newInflightGuard(),
	}
}

// StartSlackBot blocks while the Socket Mode connection runs.
func StartSlackBot(cfg config.Config, svc *service.Service, api *slack.Client) error {
	client := socketmode.New(api)
	bot := NewBot(cfg, svc, api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				slog.Info("slack connecting")
			case socketmode.EventTypeConnectionError:
				slog.Warn("slack connection error", "data", evt.Data)
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				slog.Info("slash command received", "command", cmd.Command, "user", cmd.UserID, "channel", cmd.ChannelID)
				go bot.HandleSlashCommand(cmd)
			}
		}
	}()

	slog.Info("slack bot connected via socket mode")
	return client.Run()
}

func (b *Bot) HandleSlashCommand(cmd slack.SlashCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	switch cmd.Command {
	case cmdAnalyze:
		b.handleAnalyze(ctx, cmd)
	case cmdExport:
		b.handleExport(ctx, cmd)
	case cmdStats:
		b.handleStats(ctx, cmd)
	case cmdHelp:
		b.postEphemeral(cmd, FormatHelp())
	}
}

func (b *Bot) postEphemeral(cmd slack.SlashCommand, text string) {
	b.postEphemeralTo(cmd.ChannelID, cmd.UserID, text)
}

func (b *Bot) postEphemeralTo(channelID, userID, text string) {
	_, err := b.api.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		slog.Error("posting ephemeral failed", "channel", channelID, "err", err)
	}
}

// Notifier posts plain messages to one channel.
type Notifier struct {
	api       slackAPI
	channelID string
}

func NewNotifier(api slackAPI, channelID string) *Notifier {
	return &Notifier{api: api, channelID: channelID}
}

func (n *Notifier) Notify(text string) error {
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(text, false))
	return err
}
