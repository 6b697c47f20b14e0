package telegram

import "strings"

// Command is one of the bot's chat commands. Keeping them as a typed set
// makes the command table enumerable instead of a chain of prefix checks.
type Command string

const (
	CmdStart  Command = "start"
	CmdHelp   Command = "help"
	CmdSearch Command = "search"
	CmdStatus Command = "status"
	CmdStop   Command = "stop"
)

// Commands lists every command the bot understands, in help order.
var Commands = []Command{CmdStart, CmdHelp, CmdSearch, CmdStatus, CmdStop}

// ParseCommand maps a bare command word (no leading slash, any case) to its
// Command. The second return is false for anything the bot does not know.
func ParseCommand(word string) (Command, bool) {
	c := Command(strings.ToLower(strings.TrimPrefix(word, "/")))
	for _, known := range Commands {
		if c == known {
			return c, true
		}
	}
	return "", false
}
