package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mark3labs/csdoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
