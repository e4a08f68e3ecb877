package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// @title           Meeting Analyzer API
// @version         1.0
// @description     Productivity analysis of meeting transcripts against their agenda

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
