package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType CommandType
		wantArgs []string
	}{
		{name: "status with room", input: "/status Room 1", wantType: CommandStatus, wantArgs: []string{"Room", "1"}},
		{name: "status without slash", input: "STATUS", wantType: CommandStatus},
		{name: "rooms", input: " /rooms ", wantType: CommandRooms},
		{name: "products", input: "/products", wantType: CommandProducts},
		{name: "help", input: "/help", wantType: CommandHelp},
		{name: "empty", input: "   ", wantType: CommandUnknown},
		{name: "unknown", input: "/eggs 12", wantType: CommandUnknown, wantArgs: []string{"12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.input, cmd.Raw)
		})
	}
}
