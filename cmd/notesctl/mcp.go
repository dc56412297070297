package main

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpserver "noteboard/internal/mcp"
	"noteboard/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the notes tools over MCP on stdio",
	Long: `Runs an MCP server on stdin/stdout. Tools act with the token stored by
"notesctl login", read on every call so a later login or logout takes effect.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		srv := mcpserver.NewServer(a.svc, func(ctx context.Context) (session.Session, error) {
			return a.tokens.Load()
		})
		if err := server.ServeStdio(srv); err != nil {
			fatal("MCP server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
