// Package main provides a CLI for minting caller tokens for the credverify API.
// Tokens are signed with the development key unless -key or CALLER_SIGNING_KEY
// is given, and will NOT work against a server configured with another key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"credverify/internal/callertoken"
	"credverify/internal/platform/config"
	"credverify/pkg/domain"
)

const defaultTokenTTL = time.Hour

type tokenOutput struct {
	Token     string            `json:"token"`
	Caller    string            `json:"caller"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenAs := tokenCmd.String("as", "", "Caller address (token subject). Required.")
	tokenTTL := tokenCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	tokenKey := tokenCmd.String("key", "", "Signing key. Defaults to CALLER_SIGNING_KEY, then the dev key.")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminTTL := adminCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	adminKey := adminCmd.String("key", "", "Signing key. Defaults to CALLER_SIGNING_KEY, then the dev key.")
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "token":
		_ = tokenCmd.Parse(os.Args[2:])
		mint(*tokenAs, *tokenTTL, *tokenKey, *tokenJSON)
	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		admin := os.Getenv("ISSUER_ADMIN_ADDRESS")
		if admin == "" {
			admin = os.Getenv("ISSUER_DEPLOYER_ADDRESS")
		}
		mint(admin, *adminTTL, *adminKey, *adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`credctl - Mint caller tokens for the credverify API

WARNING: Without -key the development signing key is used.

Usage:
  credctl <command> [flags]

Commands:
  token     Mint a token for any caller address
  admin     Mint a token for ISSUER_ADMIN_ADDRESS (or ISSUER_DEPLOYER_ADDRESS)

Examples:
  # Token for a holder, used with the dev opt-in route
  credctl token -as HOLDERADDR

  # Admin token as JSON
  ISSUER_ADMIN_ADDRESS=ADMINADDR credctl admin -json`)
}

func signingKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CALLER_SIGNING_KEY"); env != "" {
		return env
	}
	return config.DevSigningKey
}

func mint(as string, ttl time.Duration, key string, jsonOutput bool) {
	caller, err := domain.ParseAddress(as)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid caller address: %v\n", err)
		os.Exit(1)
	}

	svc, err := callertoken.New(signingKey(key), ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	token, err := svc.Mint(context.Background(), caller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Caller:    caller.String(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Caller Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Caller:     %s\n", caller)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/credentials")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
