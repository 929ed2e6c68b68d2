// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides prompt helpers: hidden input for secrets and
// clearing echoed prompts from the screen.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prints prompt and reads a line without echo when stdin is a
// terminal, or a plain line otherwise (piped input).
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if IsInteractive() {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(os.Stdin)
}

// ReadLine prints prompt and reads one visible line.
func ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ClearPreviousLines clears text from the terminal that was previously printed.
// textLength is the total number of characters of the prompt plus the user input.
func ClearPreviousLines(textLength int) {
	termWidth := 80 // default fallback
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	linesToClear := linesFor(textLength, termWidth)
	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K") // Move to start and clear entire line
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A") // Move up one line (don't move up on last iteration)
		}
	}
}

// linesFor returns how many lines to clear for text of the given length:
// the wrapped text plus the empty line left after Enter.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	total := (textLength + width - 1) / width
	if total < 1 {
		total = 1
	}
	return total + 1
}
