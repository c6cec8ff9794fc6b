package main

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/localstore"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/storeclient"
)

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkNewPassword(password, confirm); err != nil {
				return err
			}
			res, err := a.client.Register(cmd.Context(), name, email, password)
			if err != nil {
				return describeAPIError(err)
			}
			return a.saveSession(cmd, res)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 6 characters")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Repeat the password")
	return cmd
}

// checkNewPassword runs before any request so a typo never reaches the store.
func checkNewPassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", domain.MinPasswordLength)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return describeAPIError(err)
			}
			return a.saveSession(cmd, res)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ClearSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.store.User(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w (run logout and sign in again)", err)
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}

func (a *app) saveSession(cmd *cobra.Command, res storeclient.AuthResult) error {
	user := localstore.SessionUser{ID: res.User.ID, Name: res.User.Name, Email: res.User.Email}
	if err := a.store.SetSession(cmd.Context(), res.Token, user); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", user.Name)
	return nil
}

// describeAPIError surfaces the server's own message for rejected requests.
func describeAPIError(err error) error {
	var apiErr *storeclient.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}
