package main

// cmdKind is what one line of REPL input asks for.
type cmdKind int

const (
	cmdChat cmdKind = iota
	cmdQuit
	cmdRefreshAll
	cmdRefreshConv
	cmdRefreshInst
	cmdRefreshFiles
)

type command struct {
	kind cmdKind
	arg  string
}

// parseCommand maps REPL input to a command. Anything that is not a slash
// command is a chat message.
func parseCommand(input string) command {
	switch input {
	case "/q":
		return command{kind: cmdQuit}
	case "/r", "/ra":
		return command{kind: cmdRefreshAll}
	case "/rc":
		return command{kind: cmdRefreshConv}
	case "/ri":
		return command{kind: cmdRefreshInst}
	case "/rf":
		return command{kind: cmdRefreshFiles}
	default:
		return command{kind: cmdChat, arg: input}
	}
}
