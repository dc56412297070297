package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"noteboard/internal/notes"
	"noteboard/internal/session"
)

var (
	noteID      string
	noteTitle   string
	noteContent string
	shareEmail  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notes",
	Run: func(cmd *cobra.Command, args []string) {
		v := newApp().mount(context.Background())
		show(v)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		v := newApp().mount(ctx)
		v.SetDraft(noteTitle, noteContent)
		check(v, v.Create(ctx))
		show(v)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the title and content of a note",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		v := newApp().mount(ctx)
		if !v.BeginEdit(noteID) {
			fatal(notes.NoticeUpdateFailed, fmt.Errorf("note %s: %w", noteID, notes.ErrNoteNotFound))
		}
		edit := v.Snapshot().Edit
		title, content := edit.Title, edit.Content
		if cmd.Flags().Changed("title") {
			title = noteTitle
		}
		if cmd.Flags().Changed("content") {
			content = noteContent
		}
		v.SetEdit(noteID, title, content)
		check(v, v.Update(ctx))
		show(v)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a note",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		v := newApp().mount(ctx)
		check(v, v.Delete(ctx, noteID))
		show(v)
	},
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share a note with another user by email",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApp()
		v := notes.NewView("cli", a.session(), a.svc, nil)
		check(v, v.Share(ctx, noteID, shareEmail))
		fmt.Println(v.TakeNotice())
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes on the server",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApp()
		v := notes.NewView("cli", a.session(), a.svc, nil)
		v.SetQuery(strings.Join(args, " "))
		check(v, v.Search(ctx))
		show(v)
	},
}

// show prints the view's current list.
func show(v *notes.View) {
	printNotes(os.Stdout, v.Snapshot().Notes, session.ViewerID(v.Session()))
}

func init() {
	rootCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd, shareCmd, searchCmd)

	createCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	createCmd.Flags().StringVar(&noteContent, "content", "", "Note content (Markdown)")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("content")

	updateCmd.Flags().StringVar(&noteID, "id", "", "Note ID")
	updateCmd.Flags().StringVar(&noteTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&noteContent, "content", "", "New content (Markdown)")
	updateCmd.MarkFlagRequired("id")

	deleteCmd.Flags().StringVar(&noteID, "id", "", "Note ID")
	deleteCmd.MarkFlagRequired("id")

	shareCmd.Flags().StringVar(&noteID, "id", "", "Note ID")
	shareCmd.Flags().StringVar(&shareEmail, "email", "", "Email to share with")
	shareCmd.MarkFlagRequired("id")
	shareCmd.MarkFlagRequired("email")
}
