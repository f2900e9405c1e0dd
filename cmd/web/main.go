package main

import (
	"log"

	"fwork_backend/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
