package bot

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{
			name:    "bare command",
			text:    "/finance",
			wantCmd: "finance",
			wantOK:  true,
		},
		{
			name:     "command with args",
			text:     "/period 01.01.2024 31.01.2024",
			wantCmd:  "period",
			wantArgs: []string{"01.01.2024", "31.01.2024"},
			wantOK:   true,
		},
		{
			name:    "mention form",
			text:    "/finance@FinBot",
			wantCmd: "finance",
			wantOK:  true,
		},
		{
			name:    "uppercase command is lowered",
			text:    "/FINANCE",
			wantCmd: "finance",
			wantOK:  true,
		},
		{
			name:    "surrounding whitespace",
			text:    "  /start  ",
			wantCmd: "start",
			wantOK:  true,
		},
		{
			name:   "plain text is not a command",
			text:   "hello",
			wantOK: false,
		},
		{
			name:   "lone slash",
			text:   "/",
			wantOK: false,
		},
		{
			name:   "empty message",
			text:   "",
			wantOK: false,
		},
		{
			name:     "multi word project name",
			text:     "/project New Horizons",
			wantCmd:  "project",
			wantArgs: []string{"New", "Horizons"},
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := parseCommand(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("parseCommand(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if len(args) != 0 || len(tt.wantArgs) != 0 {
				if !reflect.DeepEqual(args, tt.wantArgs) {
					t.Errorf("args = %v, want %v", args, tt.wantArgs)
				}
			}
		})
	}
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs([]string{"New", "Horizons"}); got != "New Horizons" {
		t.Errorf("joinArgs = %q, want %q", got, "New Horizons")
	}
	if got := joinArgs(nil); got != "" {
		t.Errorf("joinArgs(nil) = %q, want empty", got)
	}
}
