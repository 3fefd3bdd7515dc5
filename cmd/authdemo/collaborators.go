package main

import (
	"context"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/rs/zerolog"
)

// menuClient fetches the permitted menu map through the gateway, so menu
// requests get the same bearer handling as every other API call.
type menuClient struct {
	api *gateway.Client
}

func (m *menuClient) Menu(ctx context.Context) (*guard.MenuMap, error) {
	var menu guard.MenuMap
	if err := m.api.GetJSON(ctx, "/api/menu", &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// consoleNavigator stands in for a real navigation service: it only logs
// where the application would navigate.
type consoleNavigator struct {
	log       zerolog.Logger
	loginPath string
}

func (n *consoleNavigator) RedirectToLogin(returnPath string) {
	n.log.Info().Str("to", n.loginPath).Str("returnPath", returnPath).Msg("redirect to login")
}

// consoleAlerter logs alerts instead of presenting them.
type consoleAlerter struct {
	log zerolog.Logger
}

func (a *consoleAlerter) ShowBlockingError(title, message string, _ func()) {
	a.log.Error().Str("title", title).Msg(message)
}

func (a *consoleAlerter) ShowWarning(message string) {
	a.log.Warn().Msg(message)
}

// consoleRenderer logs the guard's rendering decisions.
type consoleRenderer struct {
	log zerolog.Logger
}

func (r *consoleRenderer) RenderLoading()      { r.log.Info().Msg("render: loading placeholder") }
func (r *consoleRenderer) RenderDenied()       { r.log.Info().Msg("render: access denied") }
func (r *consoleRenderer) RenderContent()      { r.log.Info().Msg("render: protected content") }
func (r *consoleRenderer) RenderRevalidating() { r.log.Info().Msg("render: content + revalidation overlay") }

func (r *consoleRenderer) RenderError(err error, _ func()) {
	r.log.Error().Err(err).Msg("render: error view with manual retry")
}
