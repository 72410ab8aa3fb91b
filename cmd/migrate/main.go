// Command migrate applies the schema explicitly. Useful in production,
// where the server does not auto-migrate on boot.
package main

import (
	"log"

	"instakilo/internal/config"
	"instakilo/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("schema migration applied")
}
