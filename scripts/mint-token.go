package main

import (
	"fmt"
	"os"

	"github.com/scanlink/scanlink-server-go/internal/util"
)

// Mints an API token for a new account row. Prints the plaintext token (hand
// it to the account holder) and the hash to store in accounts.api_token_hash.
func main() {
	token, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token: %s\n", token)
	fmt.Printf("hash:  %s\n", util.HashToken(token))
}
