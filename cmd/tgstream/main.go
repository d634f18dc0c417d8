package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eartinityop/TG-File-streaming/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "tgstream",
		Short: "Telegram file streaming relay",
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Run: func(_ *cobra.Command, _ []string) {
			runServe()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.GetInfo())
		},
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
