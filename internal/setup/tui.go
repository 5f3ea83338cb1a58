// Package setup is the first-run configuration wizard: it collects the
// dashboard server address, auth token and locale, then writes the YAML
// config the client loads on every later start.
package setup

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"coindeck/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)
)

// RunTUI launches the terminal configuration wizard and writes the result
// to path. The returned config is ready to use without reloading.
func RunTUI(path string) (config.Config, error) {
	var (
		server  string
		token   string
		locale  string
		confirm bool
	)
	locale = "en-US"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("COINDECK SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Connect your terminal to the dashboard server.\n"))

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("websocket endpoint, e.g. wss://dash.example.com/ws").
				Placeholder("wss://").
				Validate(validateServerURL).
				Value(&server),
			huh.NewInput().
				Title("Auth token").
				Description("issued after login on the web dashboard").
				EchoMode(huh.EchoModePassword).
				Value(&token),
			huh.NewSelect[string]().
				Title("Language").
				Options(
					huh.NewOption("English", "en-US"),
					huh.NewOption("한국어", "ko-KR"),
				).
				Value(&locale),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return config.Config{}, errors.Wrap(err, "setup wizard")
	}
	if !confirm {
		return config.Config{}, errors.New("setup cancelled")
	}

	cfg := config.Config{
		ServerURL:      server,
		Token:          token,
		Locale:         locale,
		ReconnectDelay: 3 * time.Second,
	}
	if err := cfg.Save(path); err != nil {
		return config.Config{}, err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("\nSaved to " + path))
	return cfg, nil
}

func validateServerURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("not a valid url")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.New("must start with ws:// or wss://")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
