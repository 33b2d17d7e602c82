package cli

import (
	"context"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
)

// RunList prints all visible sessions.
func RunList(ctx context.Context, io iocli.IO, control *session.Controller) error {
	records, err := control.List(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		io.Println("No sessions found.")
		io.Println()
		io.Println("Use 'layoutsync create <title>' to create one.")
		return nil
	}

	io.Printf("Found %d session(s):\n", len(records))
	io.Println()
	for i, record := range records {
		io.Printf("%d. %s\n", i+1, record.Title)
		io.Printf("   ID:     %s\n", record.ID)
		io.Printf("   Status: %s\n", record.Status)
		io.Println()
	}
	return nil
}
