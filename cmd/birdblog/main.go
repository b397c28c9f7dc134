package main

import (
	"log"

	"github.com/joho/godotenv"

	birdblog "github.com/rhit-weinrea/moms-bird-blog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using process environment")
	}

	app := birdblog.New(birdblog.ConfigFromEnv())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
