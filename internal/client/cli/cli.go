// Package cli implements the layoutsync command set: session lifecycle
// commands that run one-shot against the authority, and an interactive
// console entered through join that drives the sync core.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
	"github.com/medigrid/layoutsync/internal/client/sync"
	"github.com/medigrid/layoutsync/internal/client/transport"
)

// Deps bundles everything the commands need.
type Deps struct {
	IO        iocli.IO
	Authority transport.Authority
	Control   *session.Controller
	Core      *sync.Core
}

// Run dispatches a command. Errors are printed to stderr and terminate the
// process with a non-zero exit code.
func Run(ctx context.Context, command string, args []string, deps Deps) {
	var err error
	switch command {
	case "create":
		err = RunCreate(ctx, args, deps.IO, deps.Control)
	case "list":
		err = RunList(ctx, deps.IO, deps.Control)
	case "start":
		err = RunStart(ctx, args, deps.IO, deps.Authority)
	case "pause":
		err = RunPause(ctx, args, deps.IO, deps.Authority)
	case "stop":
		err = RunStop(ctx, args, deps.IO, deps.Authority)
	case "join":
		err = RunJoin(ctx, args, deps.IO, deps.Control, deps.Core)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
