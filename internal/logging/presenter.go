// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatRemoteError explains a failed backend call in user terms.
// The hint depends on the error kind the transport attached.
func FormatRemoteError(err error) string {
	var builder strings.Builder

	title := "Request failed"
	var rce *gateway.RemoteCallError
	if errors.As(err, &rce) {
		title = "Request failed: " + rce.Op
	}
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	builder.WriteString("\n\n")

	var hint string
	switch {
	case errors.Is(err, gateway.ErrNoRows):
		builder.WriteString("The settings document does not exist yet.\n")
		hint = "Create the settings row in the backend, then retry"
	case errors.Is(err, gateway.ErrMultipleRows):
		builder.WriteString("More than one settings document was found.\n")
		hint = "Remove the extra settings rows so that exactly one remains"
	case ferrors.Is(err, ferrors.Unauthorized):
		builder.WriteString("The backend rejected the configured credentials.\n")
		hint = "Run 'fleetpay connect' to store a valid API key"
	case ferrors.Is(err, ferrors.BackendUnavailable):
		builder.WriteString("The backend could not be reached.\n")
		hint = "Check your network connection and the configured URL"
	case ferrors.Is(err, ferrors.DecodeFailed):
		builder.WriteString("The backend answered with data the CLI could not read.\n")
		hint = "Check that the URL points at the data API"
	case ferrors.Is(err, ferrors.BackendStatus):
		builder.WriteString("The backend refused the request.\n")
		hint = "Check the arguments and that the procedure exists"
	default:
		builder.WriteString("The operation did not complete.\n")
		hint = "Run again with --log-level debug for details"
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
	builder.WriteString("\n")

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentRemoteError displays a formatted backend error.
func PresentRemoteError(err error) {
	fmt.Println()
	fmt.Println(FormatRemoteError(err))
	fmt.Println()
}
