package cli

import (
	"github.com/codesidh/bpts/internal/prioritization/application"
)

// App holds the CLI application dependencies.
type App struct {
	Prioritization *application.Service
}

var app *App

// SetApp installs the application dependencies for all commands.
func SetApp(a *App) {
	app = a
}

// GetApp returns the current application dependencies.
func GetApp() *App {
	return app
}
