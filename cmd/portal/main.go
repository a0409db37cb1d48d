package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/feedbackportal/portal-client/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()

	application, err := newApp(c, os.Stdout)
	if err != nil {
		return fmt.Errorf("initialising application: %w", err)
	}
	return application.rootCommand().Execute()
}
