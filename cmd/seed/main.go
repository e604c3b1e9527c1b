// Seed creates staff accounts and the default system settings. Run once per
// environment:
//
//	seed -email mod@example.org -password secret -role moderator
package main

import (
	"flag"
	"log"

	"github.com/dzuokumor/Civic-voice/internal/auth"
	"github.com/dzuokumor/Civic-voice/internal/config"
	"github.com/dzuokumor/Civic-voice/internal/database"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	role := flag.String("role", model.RoleModerator, "account role (moderator or researcher)")
	organization := flag.String("organization", "", "organization name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	st := store.NewStore(db)

	if err := st.EnsureDefaults(store.DefaultSettings); err != nil {
		log.Fatalf("Failed to ensure default settings: %v", err)
	}
	log.Printf("Default settings ensured")

	if *email == "" || *password == "" {
		log.Printf("No -email/-password given, skipping account creation")
		return
	}

	if *role != model.RoleModerator && *role != model.RoleResearcher {
		log.Fatalf("Role must be %s or %s", model.RoleModerator, model.RoleResearcher)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// Staff accounts are provisioned verified.
	user, err := st.CreateUser(*email, hash, *role, *organization, true)
	if err != nil {
		log.Fatalf("Failed to create account: %v", err)
	}

	log.Printf("Created %s account %s (%s)", user.Role, user.Email, user.ID)
}
