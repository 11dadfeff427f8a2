package bot

import "strings"

// parseCommand splits a message into a bot command and its arguments.
// Only messages starting with "/" are commands; a "/cmd@BotName" mention
// form is accepted and the mention dropped. Arguments are whitespace
// separated.
func parseCommand(text string) (cmd string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	fields := strings.Fields(text)
	cmd = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	if cmd == "" {
		return "", nil, false
	}

	return strings.ToLower(cmd), fields[1:], true
}

// joinArgs reassembles a multi-word argument, the way project names are
// typed.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
