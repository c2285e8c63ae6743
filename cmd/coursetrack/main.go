package main

import (
	"log"

	"github.com/patric-chuzhbe/coursetrack/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalln("Error initializing the application:", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalln("Error running the application:", err)
	}
}
