package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
)

// RunCreate creates a draft session.
func RunCreate(ctx context.Context, args []string, io iocli.IO, control *session.Controller) error {
	if len(args) == 0 {
		return fmt.Errorf("missing title. Usage: layoutsync create <title>")
	}
	title := strings.Join(args, " ")

	record, err := control.Create(ctx, title)
	if err != nil {
		return err
	}

	io.Printf("Created session %s\n", record.ID)
	io.Printf("  Title:  %s\n", record.Title)
	io.Printf("  Status: %s\n", record.Status)
	return nil
}
