package main

import (
	"context"
	"fmt"
	"os"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/api/handlers"
	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/models"
)

// Bootstraps an admin account; the public registration endpoint cannot create one
// Usage: go run scripts/create_admin.go <email> <password> <first name> <last name>
func main() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: go run scripts/create_admin.go <email> <password> <first name> <last name>")
		fmt.Println("Example: go run scripts/create_admin.go chief@example.com 'a long passphrase' Dana Reyes")
		os.Exit(1)
	}

	a := handlers.App{}
	a.Config = *config.New()
	if err := a.Initialize(); err != nil {
		fmt.Printf("Error connecting: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	defer a.Close(ctx)

	u, err := a.Service.CreateUser(ctx, models.User{
		Email:     os.Args[1],
		FirstName: os.Args[3],
		LastName:  os.Args[4],
		Role:      models.RoleAdmin,
	}, os.Args[2])
	if err != nil {
		fmt.Printf("Error creating admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created admin %s with id %s\n", u.Email, u.ID)
}
