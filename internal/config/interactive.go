package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	inputFile = os.Stdin
)

func guidedInitialization(config *Config) error {
	scanner := bufio.NewScanner(inputFile)

	prompts := []struct {
		prompt string
		target *string
	}{
		{"Enter WebDAV base URL", &config.Remote.BaseURL},
		{"Enter user name", &config.Remote.UserName},
		{"Enter password", &config.Remote.Password},
		{fmt.Sprintf("Enter remote sync file path [default: %s]", config.Remote.SyncFilePath), &config.Remote.SyncFilePath},
		{fmt.Sprintf("Enter local data file path [default: %s]", config.DataFile), &config.DataFile},
	}
	for _, p := range prompts {
		input, err := ask(scanner, p.prompt)
		if err != nil {
			return err
		}
		if input != "" {
			*p.target = input
		}
	}

	input, err := ask(scanner, fmt.Sprintf("Enter sync interval (e.g. 30s, 1m) [default: %s]", config.SyncInterval))
	if err != nil {
		return err
	}
	if input != "" {
		duration, err := time.ParseDuration(input)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		config.SyncInterval = duration
	}

	return nil
}

func ask(scanner *bufio.Scanner, prompt string) (string, error) {
	fmt.Printf("%s: ", prompt)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read user input: %w", err)
		}
		return "", nil // EOF or closed input
	}
	return strings.TrimSpace(scanner.Text()), nil
}
