package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"noteboard/internal/auth"
	"noteboard/internal/session"
)

var (
	authUsername string
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		sess, err := auth.NewClient(a.api).Login(context.Background(), authEmail, authPassword)
		if err != nil {
			fatal(auth.UserMessage(err, auth.MsgLoginFailed), err)
		}
		store(a, sess)
		fmt.Printf("Logged in as %s.\n", authEmail)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and store its session token",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		sess, err := auth.NewClient(a.api).Register(context.Background(), authUsername, authEmail, authPassword)
		if err != nil {
			fatal(auth.UserMessage(err, auth.MsgRegisterFailed), err)
		}
		store(a, sess)
		fmt.Printf("Registered and logged in as %s.\n", authUsername)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		if err := a.tokens.Clear(); err != nil {
			fatal("Failed to remove token", err)
		}
		fmt.Println("Logged out.")
	},
}

func store(a *app, sess session.Session) {
	if err := a.tokens.Save(sess); err != nil {
		fatal("Failed to store token", err)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&authUsername, "username", "", "Username")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
}
