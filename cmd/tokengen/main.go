// Package main generates bearer tokens for acting as a given account against a local server.
// Tokens are signed with JWT_SIGNING_KEY, or the dev key when it is unset.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "sbt/internal/jwt_token"
	"sbt/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey   = "dev-secret-key-change-in-production"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	Account   string            `json:"account"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "access":
		cmd := flag.NewFlagSet("access", flag.ContinueOnError)
		account := cmd.String("account", "", "Account the token acts as (required)")
		ttl := cmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
		jsonOutput := cmd.Bool("json", false, "Output as JSON")
		if err := cmd.Parse(args[1:]); err != nil {
			return err
		}
		return generateAccessToken(*account, *ttl, *jsonOutput)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate bearer tokens for the SBT API

WARNING: Tokens are signed with JWT_SIGNING_KEY or the dev key.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  access    Generate an access token for an account

Examples:
  # Act as the registry issuer (SBT_ISSUER, default "issuer")
  tokengen access -account issuer

  # Act as a credential holder for an hour
  tokengen access -account alice -ttl 1h

  # Output as JSON
  tokengen access -account alice -json`)
}

func generateAccessToken(rawAccount string, ttl time.Duration, jsonOutput bool) error {
	account, err := domain.ParseAccount(rawAccount)
	if err != nil {
		return fmt.Errorf("-account: %w", err)
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	keyType := "env"
	if signingKey == "" {
		signingKey = devSigningKey
		keyType = "dev"
	}

	svc := jwttoken.NewJWTService(signingKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience, ttl)
	token, err := svc.GenerateAccessToken(context.Background(), account)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOutput{
			Token:     token,
			Type:      "access_token",
			Account:   account.String(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Account:     %s\n", account)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" -X POST http://localhost:8080/kyc/increment")
	return nil
}
