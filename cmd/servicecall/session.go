package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginData     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the issued credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		var body any = map[string]string{"email": loginEmail, "password": loginPassword}
		if loginData != "" {
			if !json.Valid([]byte(loginData)) {
				return fmt.Errorf("--data is not valid JSON")
			}
			body = json.RawMessage(loginData)
		}
		env, err := c.Login(ctx, body)
		if err != nil {
			return err
		}
		if !env.Success {
			_ = printEnvelope(cmd.OutOrStdout(), env)
			return fmt.Errorf("login failed with status %d: %s", env.Status, env.Message)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Call the logout endpoint and clear the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		env, err := c.Logout(ctx)
		if err != nil {
			return err
		}
		if !env.Success {
			// the local credential is gone either way
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged out (server returned %d)\n", env.Status)
			return nil
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		cred, ok, err := c.Credential(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !ok {
			_, _ = fmt.Fprintln(w, "not logged in")
			return nil
		}
		state := "valid"
		if !cred.Valid() {
			state = "expired"
		}
		expiry := "never"
		if !cred.Expiry.IsZero() {
			expiry = cred.Expiry.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "type: %s\nexpires: %s\nstate: %s\n", cred.Type(), expiry, state)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.Flags().StringVarP(&loginData, "data", "d", "", "raw JSON login body, replaces --email/--password")
}
