// Command token mints a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"catalogapi/internal/auth"
	"catalogapi/internal/config"
	"catalogapi/internal/platform/crypto"
)

func main() {
	config.LoadEnvFiles()

	if err := run(os.Args[1:], os.Getenv("JWT_SECRET"), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	sub := fs.String("sub", "dev-librarian", "token subject")
	roles := fs.String("roles", auth.RoleLibrarian, "comma separated roles")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("missing required environment variable: JWT_SECRET")
	}

	var list []string
	for _, r := range strings.Split(*roles, ",") {
		if r = auth.NormalizeRole(r); r != "" {
			list = append(list, r)
		}
	}

	token, _, err := crypto.GenerateToken(secret, *sub, list, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
