package main

import (
	"log"
)

// hackvm translates hack vm code to hack assemble code, assembles it to machine code and
// runs the result on a cpu emulator.

func main() {
	log.SetFlags(0)
	log.SetPrefix("[hackvm] ")
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
