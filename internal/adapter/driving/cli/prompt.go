package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrInterrupted is returned when the user aborts a prompt with Ctrl+C.
var ErrInterrupted = errors.New("operation interrupted")

// Prompter asks the user for input on the terminal.
type Prompter interface {
	PromptSecret(label string) (string, error)
	PromptForConfirmation(label string) bool
}

// TerminalPrompter implements Prompter with promptui.
type TerminalPrompter struct{}

// NewPrompter returns the terminal Prompter.
func NewPrompter() Prompter {
	return &TerminalPrompter{}
}

// PromptSecret reads a non-empty value with masked echo.
func (p *TerminalPrompter) PromptSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("value must not be empty")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	if err != nil {
		return "", handlePromptError(err)
	}
	return strings.TrimSpace(value), nil
}

// PromptForConfirmation asks a yes/no question; anything but yes is no.
func (p *TerminalPrompter) PromptForConfirmation(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	result, err := prompt.Run()
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(result), "y")
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrInterrupted
	}
	return fmt.Errorf("prompt failed: %w", err)
}
