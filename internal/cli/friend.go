package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFriendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Friend management commands",
	}

	cmd.AddCommand(newFriendRegisterCmd())
	cmd.AddCommand(newFriendLoginCmd())
	cmd.AddCommand(newFriendMeCmd())
	cmd.AddCommand(newFriendListCmd())
	cmd.AddCommand(newFriendEditMeCmd())
	cmd.AddCommand(newFriendFindCmd())
	cmd.AddCommand(newFriendEditCmd())
	cmd.AddCommand(newFriendDeleteCmd())

	return cmd
}

// friendFlags are the fields sent by register and both edits
type friendFlags struct {
	first, last, email, pass string
}

func (f *friendFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "First name (required)")
	cmd.Flags().StringVar(&f.last, "last", "", "Last name (required)")
	cmd.Flags().StringVar(&f.email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&f.pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")
}

func (f *friendFlags) body() map[string]string {
	return map[string]string{
		"firstName": f.first,
		"lastName":  f.last,
		"email":     f.email,
		"password":  f.pass,
	}
}

func newFriendRegisterCmd() *cobra.Command {
	var flags friendFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new friend account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CreatedResult

			if err := client.Post("/api/friends", flags.body(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newFriendLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login and store a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || pass == "" {
				return fmt.Errorf("--email and --pass are required")
			}

			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result LoginResult

			if err := client.Post("/api/friends/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newFriendMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get("/api/friends/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newFriendListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all friends",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []FriendName

			if err := client.Get("/api/friends/all", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newFriendEditMeCmd() *cobra.Command {
	var flags friendFlags

	cmd := &cobra.Command{
		Use:   "edit-me",
		Short: "Replace your own names, email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ModifiedResult

			if err := client.Put("/api/friends/editme", flags.body(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newFriendFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <email>",
		Short: "Look up a friend by email (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get(emailPath("/api/friends/find-user/", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newFriendEditCmd() *cobra.Command {
	var flags friendFlags

	cmd := &cobra.Command{
		Use:   "edit <email>",
		Short: "Replace another friend's names, email and password (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ModifiedResult

			if err := client.Put(emailPath("/api/friends/", args[0]), flags.body(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newFriendDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a friend and their position (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DeletedResult

			if err := client.Delete(emailPath("/api/friends/", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
