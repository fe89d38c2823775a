package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/elewand/elewand-server/internal/config"
	"github.com/elewand/elewand-server/internal/logger"
	"github.com/elewand/elewand-server/internal/service"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

var (
	dataPath string
	envFile  string

	rootCmd = &cobra.Command{
		Use:           "elewandctl",
		Short:         "Offline administration for an EleWand data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	usersCmd = &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user accounts",
	}

	usersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every account with its role",
		Args:  cobra.NoArgs,
		RunE:  runUsersList,
	}

	grantAdminCmd = &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give the admin role to the account registered with email",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrantAdmin,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Base path of the server data directory (default: DATA_PATH or ~/EleWand/data)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")

	usersCmd.AddCommand(usersListCmd, grantAdminCmd)
	rootCmd.AddCommand(usersCmd)
}

// openAdmin loads configuration the same way the server does and opens the store.
// The caller closes the returned store.
func openAdmin() (*service.AdminService, *store.Store, error) {
	args := []string{"-env-file", envFile}
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel("warn"),
		Environment: cfg.App.Environment,
	})

	st, err := store.New(filepath.Join(cfg.Data.BasePath, "db"), log.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return service.NewAdminService(st, validation.New(), log.Logger), st, nil
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	admin, st, err := openAdmin()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := admin.ListUsers(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role)
	}
	return w.Flush()
}

func runGrantAdmin(cmd *cobra.Command, args []string) error {
	admin, st, err := openAdmin()
	if err != nil {
		return err
	}
	defer st.Close()

	user, err := admin.GrantAdminByEmail(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now an admin\n", user.Email, user.ID)
	return nil
}
