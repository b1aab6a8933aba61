package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"saldo/internal/auth"
)

var (
	registerEmail    string
	registerPassword string
	registerEditor   bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a user account",
	Long: `Register creates a user with a bcrypt-hashed password. Users without
the --editor flag can sign in and browse but every mutation is refused.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (required)")
	registerCmd.Flags().BoolVar(&registerEditor, "editor", false, "grant the editor permission")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}

func runRegister(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := auth.NewService(st, st, cfg.SessionTTL)
	id, err := svc.Register(cmd.Context(), registerEmail, registerPassword, registerEditor)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s, editor=%v)\n",
		id, registerEmail, registerEditor)
	return nil
}
