package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/showreel/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminPassword string

var adminAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create or reset an admin account",
	Long: `Create an admin account, or reset the password of an existing one.
The password is read from --password or, when omitted, from the first line
of standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		hub, _, closeFn, err := openHub()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := auth.NewLocalProvider(hub).AddUser(cmd.Context(), args[0], password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s saved\n", auth.NormalizeEmail(args[0]))
		return nil
	},
}

func init() {
	adminAddCmd.Flags().StringVar(&adminPassword, "password", "", "password (read from stdin when empty)")
	adminCmd.AddCommand(adminAddCmd)
}
