// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerEnabled reports whether an animation may be drawn: stdout must be a
// terminal and the caller must not have asked for machine-readable output.
func spinnerEnabled() bool {
	return !jsonOutput && term.IsTerminal(int(os.Stdout.Fd()))
}

// withSpinner runs fn while an area spinner shows text.
// The area is removed when fn returns, so output printed afterwards starts clean.
func withSpinner(text string, fn func() error) error {
	if !spinnerEnabled() {
		return fn()
	}

	cursor.Hide()
	defer cursor.Show()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return fn()
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
				i++
			case <-stop:
				return
			}
		}
	}()

	err = fn()
	close(stop)
	wg.Wait()
	area.Stop()
	return err
}
