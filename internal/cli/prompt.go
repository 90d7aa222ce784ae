package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user for missing input.
type Prompter interface {
	Input(title string, secret bool) (string, error)
	Confirm(title string) (bool, error)
}

type huhPrompter struct{}

func (huhPrompter) Input(title string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return value, nil
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var confirmed bool
	confirm := huh.NewConfirm().
		Title(title).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}
