// Command hashpw prints bcrypt hashes for the passwords given as
// arguments. Useful when seeding users directly in the database.
//
// Usage:
//
//	hashpw [-cost N] password [password...]
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hashpw [-cost N] password [password...]")
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	}
}
