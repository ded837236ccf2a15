package main

import (
	"os"
	_ "time/tzdata"

	"chatrelay/cmd"
)

// @title                       Chatrelay API
// @version                     1.0
// @description                 Streaming chat relay: rooms, transcripts and LLM completion streams.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
