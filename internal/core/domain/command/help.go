package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"
)

type Help struct {
	registry port.CommandRegistry
	sender   port.TextSender
	command  string
}

func NewHelp(registry port.CommandRegistry, sender port.TextSender, command string) *Help {
	return &Help{
		registry: registry,
		sender:   sender,
		command:  command,
	}
}

func (h *Help) GetCommand() string {
	return h.command
}

func (h *Help) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	commands := h.registry.ListCommands()
	sort.Strings(commands)

	sb := &strings.Builder{}
	sb.WriteString("available commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(sb, " %s\n", cmd)
	}

	_, err := h.sender.SendMessageReply(ctx, message, sb.String())
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
