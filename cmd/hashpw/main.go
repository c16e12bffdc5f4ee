package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/regaloamor/storefront-backend/pkg/security"
)

// hashpw prints the argon2id hash for a password so it can be placed in
// REGALOAMOR_ADMIN_PASSWORD_HASH.
func main() {
	password := flag.String("password", "", "password to hash (reads stdin when omitted)")
	flag.Parse()

	value := *password
	if value == "" {
		fmt.Fprint(os.Stderr, "password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "read password: %v\n", err)
			os.Exit(1)
		}
		value = strings.TrimRight(line, "\r\n")
	}

	if value == "" {
		fmt.Fprintln(os.Stderr, "password cannot be empty")
		os.Exit(1)
	}

	hash, err := security.HashPassword(value, security.DefaultArgonParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
