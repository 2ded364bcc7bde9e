package queue

import (
	"github.com/rs/zerolog/log"
)

// Logger routes the queue client's messages, given as a message followed by key/value
// pairs, to the global logger.
type Logger struct{}

func (Logger) Info(message string, params ...any) {
	log.Info().Fields(params).Msg(message)
}

func (Logger) Error(message string, params ...any) {
	log.Error().Fields(params).Msg(message)
}
