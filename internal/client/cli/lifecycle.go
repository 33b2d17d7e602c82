package cli

import (
	"context"
	"fmt"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/transport"
)

// RunStart starts a session by ID.
func RunStart(ctx context.Context, args []string, io iocli.IO, authority transport.Authority) error {
	sessionID, err := sessionIDArg(args, "start")
	if err != nil {
		return err
	}
	if err := authority.StartSession(ctx, sessionID); err != nil {
		return err
	}
	io.Printf("Session %s started\n", sessionID)
	return nil
}

// RunPause pauses a session by ID.
func RunPause(ctx context.Context, args []string, io iocli.IO, authority transport.Authority) error {
	sessionID, err := sessionIDArg(args, "pause")
	if err != nil {
		return err
	}
	if err := authority.PauseSession(ctx, sessionID); err != nil {
		return err
	}
	io.Printf("Session %s paused\n", sessionID)
	return nil
}

// RunStop ends a session by ID.
func RunStop(ctx context.Context, args []string, io iocli.IO, authority transport.Authority) error {
	sessionID, err := sessionIDArg(args, "stop")
	if err != nil {
		return err
	}
	if err := authority.EndSession(ctx, sessionID); err != nil {
		return err
	}
	io.Printf("Session %s stopped\n", sessionID)
	return nil
}

func sessionIDArg(args []string, command string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("missing session id. Usage: layoutsync %s <session-id>", command)
	}
	return args[0], nil
}
