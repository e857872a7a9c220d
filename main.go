package main

import (
	"github.com/joho/godotenv"

	"github.com/my2lite/my2lite/cmd"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()
	cmd.Execute()
}
