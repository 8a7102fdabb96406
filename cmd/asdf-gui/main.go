// SPDX-License-Identifier: MPL-2.0

// Command asdf-gui starts the desktop shell. It takes no arguments.
package main

import (
	"context"
	"os"

	"github.com/asdf-gui/asdf-gui/internal/app"
)

func main() {
	os.Exit(app.Main(context.Background(), app.MainOptions{}))
}
