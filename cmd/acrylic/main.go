package main

import (
	"log"
	"os"

	"github.com/acrylic/tracker/cmd/acrylic/commands"
)

// @title Acrylic API
// @version 1.0
// @description Canvas assignment tracker shared by the app and widget surfaces

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token from "acrylic token issue".

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
