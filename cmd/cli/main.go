package main

import (
	"context"
	"fmt"
	"os"

	"github.com/crucial707/profiles-api/cmd/cli/root"
)

func main() {
	if err := root.New().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
