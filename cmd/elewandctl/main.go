// Package main provides elewandctl, an offline administration tool that works
// directly on the server's data directory. Stop the server before using it;
// the database allows a single process at a time.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
