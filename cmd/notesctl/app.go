package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"noteboard/internal/config"
	"noteboard/internal/notes"
	"noteboard/internal/remote"
	"noteboard/internal/session"
)

// app is what every command needs: settings, the API client and the token file.
type app struct {
	cfg    config.Config
	api    *remote.Client
	tokens *session.FileStore
	svc    *notes.Service
}

func newApp() *app {
	cfg, err := config.FromEnv()
	if err != nil {
		fatal("Failed to load config", err)
	}
	if apiHost != "" {
		cfg.APIHost = apiHost
	}
	if tokenDir != "" {
		cfg.TokenDir = tokenDir
	}

	tokens, err := session.NewFileStore(cfg.TokenDir, slog.Default())
	if err != nil {
		fatal("Failed to open token store", err)
	}

	api := remote.New(cfg.APIHost, &http.Client{Timeout: cfg.APITimeout}, slog.Default())
	return &app{
		cfg:    cfg,
		api:    api,
		tokens: tokens,
		svc:    notes.NewService(notes.NewRepo(api)),
	}
}

// session returns the stored session or exits with a hint to log in.
func (a *app) session() session.Session {
	sess, err := a.tokens.Load()
	if errors.Is(err, session.ErrNoToken) {
		fatal("Not logged in", errors.New("run `notesctl login` first"))
	}
	if err != nil {
		fatal("Failed to read token", err)
	}
	return sess
}

// mount opens a view on the stored session and loads the list, the way the notes page does.
func (a *app) mount(ctx context.Context) *notes.View {
	v := notes.NewView(uuid.NewString(), a.session(), a.svc, slog.Default())
	check(v, v.Load(ctx))
	return v
}

// check exits with the view's notice when an action failed.
func check(v *notes.View, err error) {
	if err == nil {
		return
	}
	msg := v.TakeNotice()
	if msg == "" {
		msg = "Request failed"
	}
	fatal(msg, err)
}

func printNotes(w io.Writer, list []notes.Note, viewer string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}
	for i, n := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf("[%s] %s", n.ID, n.Title)
		if viewer != "" && n.Owner != viewer && slices.Contains(n.SharedWith, viewer) {
			header += " (shared with you)"
		}
		fmt.Fprintln(w, header)
		for _, line := range strings.Split(strings.TrimRight(n.Content, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if len(n.SharedWith) > 0 {
			fmt.Fprintf(w, "    shared with: %s\n", strings.Join(n.SharedWith, ", "))
		}
	}
}
