package main

import (
	"log"

	"github.com/patric-chuzhbe/jobtrack/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("application init error: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("application stopped: %v", err)
	}
}
