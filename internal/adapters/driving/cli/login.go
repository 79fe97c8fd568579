package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft",
	Long: `Sign in with the device code flow and cache the credential.

A cached credential is reused silently. When it has expired and
auth.persist_refresh is enabled, it is refreshed without a prompt.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached credential",
	RunE:  runLogout,
}

var loginStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached sign-in",
	RunE:  runLoginStatus,
}

func init() {
	loginCmd.AddCommand(loginStatusCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Auth == nil {
		return errors.New("auth service not configured")
	}
	useTextPrompter(svc, cmd.ErrOrStderr())

	cred, err := svc.Auth.Login(commandContext(cmd))
	if err != nil {
		return err
	}

	cmd.Println("Signed in.")
	if !cred.Expiry.IsZero() {
		cmd.Printf("Token valid until %s\n", cred.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Auth == nil {
		return errors.New("auth service not configured")
	}

	if err := svc.Auth.Logout(commandContext(cmd)); err != nil {
		return err
	}
	cmd.Println("Signed out.")
	return nil
}

func runLoginStatus(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Auth == nil {
		return errors.New("auth service not configured")
	}

	status, err := svc.Auth.Status(commandContext(cmd))
	if err != nil {
		return err
	}
	if !status.SignedIn {
		cmd.Println("Not signed in.")
		return nil
	}

	who := "(unknown account)"
	if status.Account != nil && status.Account.Username != "" {
		who = status.Account.Username
	}
	cmd.Printf("Signed in as %s\n", who)
	if c := status.Credential; c != nil && !c.Expiry.IsZero() {
		state := "valid"
		if c.IsExpired() {
			state = "expired"
		}
		cmd.Printf("Token %s, expires %s\n", state, c.Expiry.Local().Format(time.RFC1123))
	}
	if status.Credential != nil && status.Credential.RefreshToken != "" {
		cmd.Println("Refresh: enabled")
	}
	return nil
}
