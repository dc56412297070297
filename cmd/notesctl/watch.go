package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"noteboard/internal/push"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print your notes and reprint them whenever the server signals a change",
	Long: `watch keeps one view open, subscribes to the configured push channel
(PUSH_DRIVER) and re-fetches the full list on every signal. It exits on Ctrl-C
or when the token file is removed, e.g. by "notesctl logout" in another terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := newApp()
		v := a.mount(ctx)
		show(v)

		src, err := push.Open(ctx, push.Options{
			Driver:       a.cfg.Push.Driver,
			APIHost:      a.cfg.APIHost,
			URL:          a.cfg.Push.URL,
			QueueURL:     a.cfg.Push.QueueURL,
			WaitTime:     a.cfg.Push.WaitTime,
			RedisAddr:    a.cfg.Push.RedisAddr,
			RedisChannel: a.cfg.Push.RedisChannel,
			Event:        a.cfg.Push.Event,
		}, slog.Default())
		if err != nil {
			fatal("Failed to open push channel", err)
		}
		if src == nil {
			fatal("Nothing to watch", fmt.Errorf("PUSH_DRIVER is %q", a.cfg.Push.Driver))
		}

		loggedOut, err := a.tokens.Watch(ctx)
		if err != nil {
			fatal("Failed to watch token file", err)
		}

		hub := push.NewHub(1, slog.Default())
		signals, unsubscribe := hub.Subscribe()
		defer unsubscribe()
		go func() {
			if err := hub.Run(ctx, src); err != nil {
				slog.Error("push channel stopped", "error", err)
			}
			hub.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-loggedOut:
				fmt.Fprintln(os.Stderr, "Logged out, stopping.")
				return
			case sig, ok := <-signals:
				if !ok {
					if ctx.Err() != nil {
						return
					}
					fatal("Push channel closed", fmt.Errorf("driver %s", a.cfg.Push.Driver))
				}
				if err := v.Refresh(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", v.TakeNotice(), err)
					continue
				}
				fmt.Printf("\n--- %s (%s) ---\n", sig.Event, sig.At.Format(time.TimeOnly))
				show(v)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
