package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	gosync "sync"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
	"github.com/medigrid/layoutsync/internal/client/sync"
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/validation"
)

// RunJoin joins a session and enters the interactive console. It returns
// when the user quits or stdin closes.
func RunJoin(ctx context.Context, args []string, cio iocli.IO, control *session.Controller, core *sync.Core) error {
	sessionID, err := sessionIDArg(args, "join")
	if err != nil {
		return err
	}

	record, err := control.Join(ctx, sessionID)
	if err != nil {
		return err
	}
	defer core.Deactivate()

	cio.Printf("Joined session %s (%s)\n", record.ID, record.Status)
	cio.Println("Type 'status' for the current grid, 'quit' to leave.")
	cio.Println()

	for {
		line, err := cio.ReadInput("> ")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := runConsoleCommand(cio, core, fields[0], fields[1:]); err != nil {
			cio.Printf("Error: %v\n", err)
		}
	}
}

func runConsoleCommand(cio iocli.IO, core *sync.Core, command string, args []string) error {
	switch command {
	case "place":
		if len(args) != 2 {
			return fmt.Errorf("usage: place <slot> <source>")
		}
		slot, err := slotArg(args[0])
		if err != nil {
			return err
		}
		if err := validation.ValidateSourceID(args[1]); err != nil {
			return err
		}
		source := args[1]
		if err := core.Edit(func(g models.Grid) models.Grid { return g.Assign(slot, source) }); err != nil {
			return err
		}
	case "clear":
		if len(args) != 1 {
			return fmt.Errorf("usage: clear <slot>")
		}
		slot, err := slotArg(args[0])
		if err != nil {
			return err
		}
		if err := core.Edit(func(g models.Grid) models.Grid { return g.Clear(slot) }); err != nil {
			return err
		}
	case "swap":
		if len(args) != 2 {
			return fmt.Errorf("usage: swap <a> <b>")
		}
		a, err := slotArg(args[0])
		if err != nil {
			return err
		}
		b, err := slotArg(args[1])
		if err != nil {
			return err
		}
		if err := core.Edit(func(g models.Grid) models.Grid { return g.Swap(a, b) }); err != nil {
			return err
		}
	case "preset":
		if len(args) != 1 {
			return fmt.Errorf("usage: preset %s", strings.Join(models.PresetNames, "|"))
		}
		name := args[0]
		if _, ok := models.PresetGrid(name, models.EmptyGrid()); !ok {
			return fmt.Errorf("unknown preset: %s", name)
		}
		if err := core.Edit(func(g models.Grid) models.Grid {
			next, _ := models.PresetGrid(name, g)
			return next
		}); err != nil {
			return err
		}
		cio.Printf("Layout preset applied: %s\n", name)
	case "undo":
		if err := core.Undo(); err != nil {
			return err
		}
	case "follow":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: follow on|off")
		}
		core.SetFollow(args[0] == "on")
	case "sync":
		core.SyncNow()
	case "status":
		printStatus(cio, core.Status())
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	printGrid(cio, core.Status())
	return nil
}

func slotArg(raw string) (int, error) {
	slot, err := strconv.Atoi(raw)
	if err != nil || slot < 0 || slot >= models.PanelCount {
		return 0, fmt.Errorf("slot must be a number between 0 and %d", models.PanelCount-1)
	}
	return slot, nil
}

func printGrid(cio iocli.IO, s sync.Status) {
	parts := make([]string, 0, len(s.Grid))
	for i, source := range s.Grid {
		if source == "" {
			source = "-"
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", i, source))
	}
	cio.Printf("v%d  %s\n", s.Version, strings.Join(parts, "  "))
}

func printStatus(cio iocli.IO, s sync.Status) {
	printGrid(cio, s)
	cio.Printf("Connection:   %s", s.Connection)
	if s.ReconnectAttempts > 0 {
		cio.Printf(" (attempt %d)", s.ReconnectAttempts)
	}
	cio.Println()
	cio.Printf("Role:         %s\n", s.Role)
	cio.Printf("Participants: %d\n", s.Participants)
	cio.Printf("Follow:       %v", s.FollowPresenter)
	if s.PendingPresenter {
		cio.Printf(" (update pending)")
	}
	cio.Println()
	if s.SyncError != "" {
		cio.Printf("Sync error:   %s\n", s.SyncError)
	}
}

// Printer renders core notices and status transitions onto the console. Its
// methods are invoked from the core's run loop.
type Printer struct {
	io iocli.IO

	mu       gosync.Mutex
	lastConn models.ConnectionState
}

// NewPrinter creates a console printer.
func NewPrinter(io iocli.IO) *Printer {
	return &Printer{io: io}
}

// Notice prints a transient notification.
func (p *Printer) Notice(n sync.Notice) {
	prefix := "info"
	switch n.Kind {
	case sync.NoticeSuccess:
		prefix = "ok"
	case sync.NoticeWarning:
		prefix = "warn"
	case sync.NoticeError:
		prefix = "err"
	}
	p.io.Printf("[%s] %s\n", prefix, n.Message)
}

// Status prints connection transitions; routine status churn stays quiet.
func (p *Printer) Status(s sync.Status) {
	p.mu.Lock()
	changed := s.Connection != p.lastConn
	p.lastConn = s.Connection
	p.mu.Unlock()

	if changed {
		p.io.Printf("-- connection: %s\n", s.Connection)
	}
}
