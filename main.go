// Package main is the entry point for the fleetpay CLI application.
// It relays wallet and payment-settings operations to the configured backend.
package main

import (
	"fleetpay/cli/cmd"
)

func main() {
	cmd.Execute()
}
