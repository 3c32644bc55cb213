// Package app assembles the daylight command-line client: configuration,
// session restore, the API client and the cobra command tree that stands in
// for the web presentation layer.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daylight-community/daylight-go/internal/api"
)

// Run executes the daylight CLI with the provided arguments.
func Run(ctx context.Context, args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "daylight",
		Short:         "Command-line client for the DayLight faith-community platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a daylight.yaml config file")

	cmd.AddCommand(newLoginCommand(&configPath))
	cmd.AddCommand(newLogoutCommand(&configPath))
	cmd.AddCommand(newRegisterCommand(&configPath))
	cmd.AddCommand(newMeCommand(&configPath))
	cmd.AddCommand(newWallCommand(&configPath))
	return cmd
}

func newLoginCommand(configPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store session tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}

			if password == "" {
				password, err = promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			if err := deps.client.Login(cmd.Context(), args[0], password); err != nil {
				return loginFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the stored session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}
			if err := deps.client.Logout(); err != nil {
				return err
			}
			deps.profiles.Invalidate()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newRegisterCommand(configPath *string) *cobra.Command {
	var (
		username string
		email    string
		password string
		confirm  string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}

			profile, err := deps.client.Register(cmd.Context(), api.RegisterParams{
				Username:        username,
				Email:           email,
				Password:        password,
				ConfirmPassword: confirm,
			})
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.HasFieldErrors() {
					for field, messages := range apiErr.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, strings.Join(messages, " "))
					}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Sign in with `daylight login %s`.\n", profile.Username, profile.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "Password confirmation")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("confirm-password")
	return cmd
}

func newMeCommand(configPath *string) *cobra.Command {
	var (
		displayName string
		picture     string
	)

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show or update the current user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDependencies(*configPath)
			if err != nil {
				return err
			}

			if displayName == "" && picture == "" {
				profile, err := deps.profiles.Me(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (@%s)\n", profile.Name(), profile.Username)
				if profile.ProfilePictureURL != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Picture: %s\n", profile.ProfilePictureURL)
				}
				return nil
			}

			update := api.ProfileUpdate{}
			if displayName != "" {
				update.DisplayName = &displayName
			}
			if picture != "" {
				update.ProfilePicture = &picture
			}
			profile, err := deps.client.UpdateMe(cmd.Context(), update)
			if err != nil {
				return err
			}
			deps.profiles.Invalidate()
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s (@%s)\n", profile.Name(), profile.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "New display name")
	cmd.Flags().StringVar(&picture, "picture", "", "New profile picture URL")
	return cmd
}

// promptLine reads one line from the command's input stream.
func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// loginFailure rewrites a 401 from the token endpoint into a friendlier
// message; other errors pass through untouched.
func loginFailure(err error) error {
	if api.IsStatus(err, 401) {
		return errors.New("invalid username or password")
	}
	return err
}
