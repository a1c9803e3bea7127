// Command buddy runs a terminal REPL backed by a remote assistant profile.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/odvcencio/buddy/pkg/buddy"
	"github.com/odvcencio/buddy/pkg/bus"
	"github.com/odvcencio/buddy/pkg/config"
	"github.com/odvcencio/buddy/pkg/logging"
	"github.com/odvcencio/buddy/pkg/paths"
	"github.com/odvcencio/buddy/pkg/session"
	"github.com/odvcencio/buddy/pkg/terminal"
)

const defaultDir = "buddy"

func main() {
	dir := flag.String("dir", defaultDir, "profile directory")
	recreate := flag.Bool("recreate", false, "recreate the assistant and reupload its files")
	flag.Parse()

	out := terminal.New()
	out.Newline()

	if err := run(*dir, *recreate, out); err != nil {
		out.Error("%v", err)
		os.Exit(1)
	}
	out.Println("\nBye!")
}

func run(dir string, recreate bool, out *terminal.Writer) error {
	ctx := context.Background()

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(paths.LogsDir(dir), session.GenerateSessionID(cfg.Name))
	if err != nil {
		out.Warn("session logging unavailable: %v", err)
		logger = nil
	}
	if logger != nil {
		defer logger.Close()
	}

	eventBus := bus.New()
	defer eventBus.Close()

	if cfg.Events.NATS.Enabled {
		mirror, err := bus.StartNATSMirror(eventBus, cfg.Events.NATS.URL, cfg.Events.NATS.SubjectPrefix, "buddy-cli")
		if err != nil {
			out.Warn("event mirror unavailable: %v", err)
		} else {
			defer mirror.Close()
		}
	}

	printer := eventBus.Subscribe()
	go func() {
		for evt := range printer.Events() {
			out.PrintEvent(evt)
		}
	}()
	defer printer.Unsubscribe()

	bd, err := buddy.InitFromDir(ctx, dir, recreate, buddy.Options{Bus: eventBus, Logger: logger})
	if err != nil {
		return err
	}
	// -recreate rebuilds the assistant and its files only; the conversation
	// is reset through the /r and /rc commands.
	conv, err := bd.LoadOrCreateConv(ctx, false)
	if err != nil {
		return err
	}

	out.Dim("commands: /q quit, /r refresh all, /rc new conversation, /ri reload instructions, /rf reupload files")

	in := bufio.NewReader(os.Stdin)
	for {
		// Give the event printer a beat to flush before prompting.
		time.Sleep(50 * time.Millisecond)

		input, err := out.Prompt("Ask away", in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if input == "" {
			continue
		}

		switch cmd := parseCommand(input); cmd.kind {
		case cmdQuit:
			return nil

		case cmdChat:
			reply, err := bd.Chat(ctx, conv, cmd.arg)
			if err != nil {
				out.Error("%v", err)
				continue
			}
			out.Reply(reply)

		case cmdRefreshAll:
			bd, err = buddy.InitFromDir(ctx, dir, true, buddy.Options{Bus: eventBus, Logger: logger})
			if err != nil {
				return err
			}
			if conv, err = bd.LoadOrCreateConv(ctx, true); err != nil {
				return err
			}

		case cmdRefreshConv:
			if conv, err = bd.LoadOrCreateConv(ctx, true); err != nil {
				return err
			}

		case cmdRefreshInst:
			if _, err := bd.UploadInstructions(ctx); err != nil {
				return err
			}
			if conv, err = bd.LoadOrCreateConv(ctx, true); err != nil {
				return err
			}

		case cmdRefreshFiles:
			if _, err := bd.UploadFiles(ctx, true); err != nil {
				return err
			}
			if conv, err = bd.LoadOrCreateConv(ctx, true); err != nil {
				return err
			}
		}
	}
}
