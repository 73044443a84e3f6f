package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/archivepull/archive-pull/internal/config"
	"github.com/archivepull/archive-pull/internal/pipeline"
	"github.com/archivepull/archive-pull/internal/platform"
	"github.com/archivepull/archive-pull/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.archivepull.archive-pull"
	AppName = "Archive Pull"

	WindowWidth  = 720
	WindowHeight = 560
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	myApp := app.NewWithID(AppID)

	// Apply compact theme
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Locate the bundled tools and probe encoder support once at startup
	bins := platform.DiscoverBinaries()
	capability := platform.ProbeCapability(bins.FFmpeg)

	settings := config.NewSettings(myApp)
	destinationDir := settings.GetDestinationDirectory()
	if err := platform.CreateDirectoryIfNotExists(destinationDir); err != nil {
		fmt.Printf("failed to ensure destination dir: %v\n", err)
	}

	service := pipeline.NewService(bins, capability)

	// Create and setup UI
	ui.NewRootUI(myWindow, myApp, service)

	// Show and run
	myWindow.ShowAndRun()
}
