// Command devtoken mints an access token signed with JWT_SECRET for local use against the API.
//
//	devtoken --user org-1 --roles organizer --ttl 2h
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"eventhub/config"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/domain"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	userID := fs.String("user", "", "subject (user ID) of the token")
	email := fs.String("email", "", "email claim; defaults to <user>@example.com")
	roles := fs.StringSlice("roles", []string{domain.RoleAttendee}, "comma-separated roles: attendee, organizer, admin")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}
	for _, r := range *roles {
		switch r {
		case domain.RoleAttendee, domain.RoleOrganizer, domain.RoleAdmin:
		default:
			return fmt.Errorf("unknown role %q", r)
		}
	}
	if *email == "" {
		*email = *userID + "@example.com"
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*userID, *email, *roles, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
