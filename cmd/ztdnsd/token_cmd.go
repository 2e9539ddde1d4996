package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ztdns/overlay/internal/token"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect signed configuration tokens",
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token-file> <ca-cert-file>",
	Short: "Verify a signed configuration token against the overlay CA",
	Args:  cobra.ExactArgs(2),
	RunE:  runTokenVerify,
}

func init() {
	tokenCmd.AddCommand(tokenVerifyCmd)
}

// runTokenVerify exercises the same RS256 verification the endpoint
// agent performs before trusting an installer bundle, as an operator
// debug aid (spec section 3/6).
func runTokenVerify(cmd *cobra.Command, args []string) error {
	tokenFile, caFile := args[0], args[1]

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return fmt.Errorf("reading token file: %w", err)
	}

	pub, err := token.LoadCAPublicKey(caFile)
	if err != nil {
		return err
	}

	payload, err := token.Verify(string(raw), pub)
	if err != nil {
		return err
	}

	fmt.Printf("signature: valid\n")
	fmt.Printf("type:      %s\n", payload.Type)
	fmt.Printf("server:    %s\n", payload.Server)
	fmt.Printf("proxy:     %s\n", payload.Proxy)
	fmt.Printf("expires:   %s\n", payload.Expires)
	if len(payload.Domains) > 0 {
		fmt.Printf("domains:   %v\n", payload.Domains)
	}
	if payload.Expired(time.Now()) {
		fmt.Println("warning:   token is expired")
	}
	return nil
}
