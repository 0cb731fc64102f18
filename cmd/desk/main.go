// Command desk is the terminal client of the event request workflow.
//
//	desk submit -type Wedding -venue "Hall A" -date 2025-12-01 -budget 5000 -description "..."
//	desk browse [-type Sports] [-search hall]
//	desk accept -id <request> [-budget 4500]
//	desk reject -id <request>
//	desk mine
//	desk select -id <request> -organizer <organizer>
//	desk watch
//
// Configuration comes from the environment (API_BASE_URL, PUSH_URL, AUTH_TOKEN, ...).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventrequests/config"
	"eventrequests/internal/adapters/auth"
	"eventrequests/internal/adapters/backend"
	"eventrequests/internal/adapters/push"
	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
	"eventrequests/internal/usecase"
)

// pushWait bounds how long a write command waits for the push channel before
// acting without it.
const pushWait = 3 * time.Second

// app holds what every command needs.
type app struct {
	cfg      *config.ClientConfig
	logger   *slog.Logger
	identity domain.Identity
	api      *backend.Client
	relay    *relay.Relay
	alerter  usecase.Alerter
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		return 1
	}
	logger := config.NewLoggerTo(os.Stderr)

	identity, err := auth.DecodeIdentity(cfg.Token)
	if err != nil {
		// Commands still run; write actions report the missing identity themselves.
		logger.Warn("no usable AUTH_TOKEN", "err", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		identity: identity,
		api:      backend.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.APIBaseURL, cfg.Token),
		relay: relay.New(push.NewDialer(cfg.PushURL, cfg.Token), logger, relay.Options{
			MaxAttempts: cfg.ReconnectMaxAttempts,
			Interval:    cfg.ReconnectInterval,
		}),
		alerter: usecase.AlertFunc(func(msg string) {
			fmt.Fprintln(os.Stderr, "!", msg)
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		var verr *usecase.ValidationError
		switch {
		case errors.As(err, &verr):
			for _, msg := range verr.Fields.Messages() {
				fmt.Fprintln(os.Stderr, "-", msg)
			}
		case errors.Is(err, errUsage):
		default:
			logger.Debug("command failed", "command", args[0], "err", err)
		}
		return 1
	}
	return 0
}

// connectPush starts the relay and waits briefly for it. Failure is logged only:
// notifications are best-effort.
func (a *app) connectPush(ctx context.Context) {
	a.relay.Connect(ctx)
	wctx, cancel := context.WithTimeout(ctx, pushWait)
	defer cancel()
	if err := a.relay.WaitConnected(wctx); err != nil {
		a.logger.Warn("push channel unavailable, notifications will not be sent", "url", a.cfg.PushURL, "err", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: desk <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].summary)
	}
}
