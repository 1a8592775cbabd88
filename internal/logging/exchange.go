// Package logging records the simulated message exchanges between the three
// parties as structured zerolog events.
package logging

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
)

// Parties of the simulation.
const (
	Client   = "Client"
	Browser  = "Browser"
	Auth     = "Auth"
	Resource = "Resource"
)

// tokenLogLength is how much of a bearer string is logged.
const tokenLogLength = 18

// Exchange starts an info event for a message sent from one party to another.
// Callers add fields and finish with Msg, e.g. Exchange(Client, Auth).Msg("POST /token").
func Exchange(from, to string) *zerolog.Event {
	return log.Info().Str("from", from).Str("to", to)
}

// Token shortens a secret-bearing string for logging.
func Token(s string) string {
	return utils.Truncate(s, tokenLogLength)
}

// Setup configures the global logger with a console writer at level.
// Unknown levels fall back to info.
func Setup(level string, w zerolog.ConsoleWriter) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
