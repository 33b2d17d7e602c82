package cli

import "fmt"

const usageTemplate = `
layoutsync Client

Usage:
  layoutsync [OPTIONS] COMMAND

Options:
  --version        Show version information
  --config PATH    Path to TOML config file
  --server URL     Server URL (default: http://localhost:8000)
  --backend NAME   Transport backend: rest or docstore (default: rest)
  --db PATH        Path to local database (default: layoutsync-client.db)
  --role ROLE      Participant role: surgeon, admin or viewer (default: surgeon)

Commands:
  create <title>   Create a new draft session
  list             List sessions
  start <id>       Start a session
  pause <id>       Pause a session
  stop <id>        End a session
  join <id>        Join a session and enter the interactive console

Console commands (inside join):
  place <slot> <source>   Assign a source to a slot (0-3)
  clear <slot>            Vacate a slot
  swap <a> <b>            Swap two slots
  preset <name>           Apply a grid preset: quad, focus, teaching or clear
  undo                    Revert the last local change
  follow on|off           Toggle presenter-follow mode
  sync                    Force a reconnect and snapshot refetch
  status                  Print the current grid and connection state
  quit                    Leave the session

Examples:
  layoutsync create "OR 3 morning block"
  layoutsync list
  layoutsync --role viewer join b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5
  layoutsync --backend docstore --db ./local.db join b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5
`

// PrintUsage prints command usage to stdout.
func PrintUsage() {
	fmt.Print(usageTemplate)
}
