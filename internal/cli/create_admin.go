package cli

import (
	"flag"
	"fmt"

	"github.com/mrlokans/libreria/internal/auth"
	"github.com/mrlokans/libreria/internal/config"
	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/database/users"
)

// CreateAdminCommand creates a local account so the HTTP surface can be
// used with AUTH_MODE=local.
type CreateAdminCommand struct {
	Username     string
	Password     string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (c *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&c.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&c.Password, "password", "", "Password for the new account (required)")
	fs.StringVar(&c.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database file")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s create-admin [options]\n\n", flag.CommandLine.Name())
		fmt.Fprintf(fs.Output(), "Creates a user account for the local auth mode.\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.Username == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -username")
	}
	if c.Password == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -password")
	}

	return nil
}

func (c *CreateAdminCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(c.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", c.DatabasePath, err)
	}
	defer db.Close()

	userRepo := users.NewRepository(db.DB)
	authService := auth.NewService(userRepo, cfg.Auth)

	user, err := authService.CreateUser(c.Username, c.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id=%d)\n", user.Username, user.ID)
	return nil
}
