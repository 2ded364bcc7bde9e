package state

import (
	"database/sql"

	"github.com/sidereusnuntius/donata/internal/config"
)

// State is what the embedded api shares between its layers.
type State struct {
	DB     *sql.DB
	Config config.Configuration
}
