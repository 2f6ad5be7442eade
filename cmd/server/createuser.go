package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/service"
	"github.com/spf13/cobra"
)

var (
	newUsername string
	newPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Register a user account",
	Long: `Register a user account. The password is read from --password or,
when empty, from the NEW_USER_PASSWORD environment variable.`,
	Args: cobra.NoArgs,
	RunE: runCreateUser,
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringVarP(&newUsername, "username", "u", "", "username")
	createUserCmd.Flags().StringVarP(&newPassword, "password", "p", "", "password")
	_ = createUserCmd.MarkFlagRequired("username")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	password := newPassword
	if password == "" {
		password = os.Getenv("NEW_USER_PASSWORD")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	services := service.NewServices(repository.New(db), cfg, nil, log)
	user, err := services.Auth.Signup(context.Background(), newUsername, password)
	if err != nil {
		var fe *service.FormError
		if errors.As(err, &fe) {
			return fmt.Errorf("%w: %v", err, fe.Fields)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
	return nil
}
