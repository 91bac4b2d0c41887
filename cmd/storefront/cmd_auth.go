package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"Storefront/internal/auth"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := get().auth.Login(cmd.Context(), args[0], password).Await(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var (
		u        auth.User
		addr     auth.Address
		password string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != (auth.Address{}) {
				u.Address = &addr
			}
			created, err := get().auth.Register(cmd.Context(), u, password).Await(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s <%s> (id %d)\n", created.Name, created.Email, created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&u.Name, "name", "", "full name")
	f.StringVar(&u.Email, "email", "", "email address")
	f.StringVar(&u.Phone, "phone", "", "phone number")
	f.StringVarP(&password, "password", "p", "", "account password")
	f.StringVar(&addr.Street, "street", "", "street address")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.State, "state", "", "state or province")
	f.StringVar(&addr.ZipCode, "zip", "", "postal code")
	f.StringVar(&addr.Country, "country", "", "country")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := get().auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, ok := get().auth.CurrentUser()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func printUser(w io.Writer, u auth.User) {
	fmt.Fprintf(w, "%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	if u.Phone != "" {
		fmt.Fprintf(w, "phone: %s\n", u.Phone)
	}
	if a := u.Address; a != nil {
		fmt.Fprintf(w, "address: %s, %s, %s %s, %s\n", a.Street, a.City, a.State, a.ZipCode, a.Country)
	}
}
