// Command ztdnsd runs the zero-trust overlay's data plane: the shared
// registry, the DNS-over-TLS resolver, and the mutually-authenticated
// routing proxy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	appName = "ztdnsd"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Zero-trust DoT resolver and mTLS routing proxy",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: /etc/ztdnsd/ztdnsd.yaml)")
	rootCmd.AddCommand(serveCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
