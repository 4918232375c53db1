package command

import (
	"errors"
	"strings"
	"waitbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Registry struct {
	commands map[string]port.Command
	prefixes map[string]port.Command
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	log.Info().Str("handler", handler.GetCommand()).Msg("adding command handler to registry")
	r.commands[handler.GetCommand()] = handler
}

// RegisterPrefix registers a handler for dynamically named commands, matched
// by prefix when no exact command matches.
func (r *Registry) RegisterPrefix(prefix string, handler port.Command) {
	if r.prefixes == nil {
		r.prefixes = make(map[string]port.Command)
	}

	log.Info().Str("prefix", prefix).Msg("adding prefix handler to registry")
	r.prefixes[prefix] = handler
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if r.commands == nil {
		err := errors.New("can't fetch command, registry not initialized")
		return nil, err
	}

	handler, ok := r.commands[command]
	if !ok {
		return nil, errors.New("command not found")
	}

	return handler, nil
}

func (r *Registry) GetByPrefix(command string) (port.Command, error) {
	for prefix, handler := range r.prefixes {
		if strings.HasPrefix(command, prefix) {
			return handler, nil
		}
	}

	return nil, errors.New("command not found")
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.commands))

	i := 0
	for k := range r.commands {
		keys[i] = k
		i++
	}

	return keys
}

func ParseCommandArgs(args string) string {
	command := strings.Split(args, " ")
	return strings.Join(command[1:], " ")
}

func ParseCommand(args string) string {
	command := strings.Split(args, " ")
	return strings.ToLower(command[0])
}

// SanitizeName turns a product name into its command-safe form: lower case,
// spaces replaced by underscores.
func SanitizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
