package models

import "strings"

// CommandType enumerates the operator commands understood over WhatsApp.
type CommandType string

const (
	CommandStatus   CommandType = "status"
	CommandRooms    CommandType = "rooms"
	CommandProducts CommandType = "products"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from message text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as "/status Room 1".
func ParseCommand(message string) Command {
	cmd := Command{Raw: message, Type: CommandUnknown}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	switch CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))) {
	case CommandStatus:
		cmd.Type = CommandStatus
	case CommandRooms:
		cmd.Type = CommandRooms
	case CommandProducts:
		cmd.Type = CommandProducts
	case CommandHelp:
		cmd.Type = CommandHelp
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
