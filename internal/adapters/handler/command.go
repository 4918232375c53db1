package handler

import (
	"context"
	"strings"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/domain/command"
	"waitbot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Command struct {
	commandRegistry port.CommandRegistry
	sender          port.TextSender
	recorder        port.Recorder
	botUsername     string
	timeout         time.Duration
}

func NewCommand(commandRegistry port.CommandRegistry, sender port.TextSender,
	recorder port.Recorder, botUsername string, timeout time.Duration) *Command {
	return &Command{
		commandRegistry: commandRegistry,
		sender:          sender,
		recorder:        recorder,
		botUsername:     botUsername,
		timeout:         timeout,
	}
}

// Handle dispatches an inbound update to its command handler. Each update is
// processed in its own goroutine; a handler failure or panic answers with a
// generic reply and never takes the process down.
func (c *Command) Handle(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	log.Debug().Str("message", update.Message.Text).Msg("received command")

	cmd := command.ParseCommand(update.Message.Text)
	cmd = strings.TrimSuffix(cmd, "@"+strings.ToLower(c.botUsername))

	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		commandHandler, err = c.commandRegistry.GetByPrefix(cmd)
		if err != nil {
			log.Debug().Str("command", cmd).Msg("no handler for command")
			return
		}
	}

	message := &domain.Message{
		ID:       update.Message.ID,
		ChatID:   update.Message.Chat.ID,
		ChatType: domain.ChatType(update.Message.Chat.Type),
		UserID:   update.Message.From.ID,
		Username: getUserName(update.Message.From),
		Text:     update.Message.Text,
	}

	c.recorder.Record("command_received", map[string]any{
		"command": cmd,
		"chatId":  message.ChatID,
	})

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("command", cmd).
					Msg("command handler panicked")
				c.recorder.Record("command_panic", map[string]any{"command": cmd})
				c.notifyFailure(message)
			}
		}()

		if err := commandHandler.Respond(context.Background(), c.timeout, message); err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
			c.recorder.Record("command_failed", map[string]any{"command": cmd})
		}
	}()
}

const genericFailure = "something went wrong, please try again later"

func (c *Command) notifyFailure(message *domain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.sender.SendMessageReply(ctx, message, genericFailure); err != nil {
		log.Warn().Err(err).Int64("chatId", message.ChatID).
			Msg("failed to send failure reply")
	}
}

func getUserName(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return user.Username
}
