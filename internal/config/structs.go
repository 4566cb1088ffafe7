package config

import (
	"time"

	"github.com/classgroups/classgroups/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration // lifetime of a session written by the login service
	Table      string        // table used by the mysql/postgres session storage
}

// Evidence settings for plagiarism evidence artifacts.
type Evidence struct {
	Path string // root directory of the artifact store
}

// Import settings for bulk CSV exchange.
type Import struct {
	MaxFileSize int // upload limit in bytes
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Evidence  Evidence
	Import    Import
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
