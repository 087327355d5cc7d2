// Package main is the entrypoint for the action gateway.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/morezero/action-gateway/internal/config"
	"github.com/morezero/action-gateway/internal/server"
)

const usage = `Usage: action-gateway [command]
       action-gateway serve      Start the gateway (NATS dispatch subjects, HTTP surface).
       action-gateway manifest   Print the encrypted action manifest and exit.

Commands:
  serve      (default) Start the action gateway.
  manifest   Build and print the encrypted manifest for the configured policy.

Environment: GATEWAY_PASSKEY, GATEWAY_VERSION_NOW, GATEWAY_VERSION_MIN (required),
GATEWAY_FORCE_UPDATE, GATEWAY_BOOTSTRAP_FILE, COMMS_URL, HTTP_PORT, LOG_LEVEL. See README.
`

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "", "serve":
		if err := server.Run(server.Options{}); err != nil {
			log.Fatalf("action-gateway serve: %v", err)
		}
	case "manifest":
		if err := runManifest(); err != nil {
			log.Fatalf("action-gateway manifest: %v", err)
		}
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "action-gateway: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// runManifest builds the engine offline and prints the encrypted manifest.
func runManifest() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	eng, err := server.BuildEngine(cfg, nil, nil)
	if err != nil {
		return err
	}
	manifest, err := eng.Manifest()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
