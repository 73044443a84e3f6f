package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/archivepull/archive-pull/internal/config"
	"github.com/archivepull/archive-pull/internal/model"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	// UI components
	destinationEntry *widget.Entry
	bitrateEntries   map[string]*widget.Entry
	hdrCheck         *widget.Check
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:       settings,
		window:         window,
		bitrateEntries: make(map[string]*widget.Entry),
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	// Destination directory selection
	sd.destinationEntry = widget.NewEntry()
	sd.destinationEntry.SetPlaceHolder("Destination directory path")

	browseDirBtn := widget.NewButton("Browse", sd.onBrowseDirectory)
	destinationRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.destinationEntry)

	// One Mbps entry per resolution/tier slot
	bitrateGrid := container.NewGridWithColumns(4)
	for _, key := range model.BitrateKeys {
		entry := widget.NewEntry()
		entry.SetPlaceHolder("Mbps")
		sd.bitrateEntries[key] = entry
		bitrateGrid.Add(widget.NewLabel(bitrateSlotLabel(key)))
		bitrateGrid.Add(entry)
	}

	sd.hdrCheck = widget.NewCheck("Always apply HDR bitrate floors", nil)

	// Create form
	form := container.NewVBox(
		widget.NewLabel("Output Settings"),
		widget.NewSeparator(),

		widget.NewLabel("Destination Directory:"),
		destinationRow,

		widget.NewSeparator(),
		widget.NewLabel("Bitrates (Mbps):"),
		bitrateGrid,

		widget.NewSeparator(),
		sd.hdrCheck,
	)

	// Create dialog with buttons
	sd.dialog = dialog.NewCustomConfirm(
		"Settings",
		"Save",
		"Cancel",
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(520, 460))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.destinationEntry.SetText(sd.settings.GetDestinationDirectory())
	for key, entry := range sd.bitrateEntries {
		entry.SetText(strconv.Itoa(sd.settings.GetBitrate(key)))
	}
	sd.hdrCheck.SetChecked(sd.settings.GetHDROverride())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.destinationEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.destinationEntry.Text; dir != "" {
		sd.settings.SetDestinationDirectory(dir)
	}

	for key, entry := range sd.bitrateEntries {
		if entry.Text == "" {
			continue
		}
		if mbps, err := strconv.Atoi(entry.Text); err == nil {
			sd.settings.SetBitrate(key, mbps)
		}
	}

	sd.settings.SetHDROverride(sd.hdrCheck.Checked)

	dialog.ShowInformation("Settings", "Settings saved successfully!", sd.window)
}

// bitrateSlotLabel renders a resolution/tier key for display, e.g.
// "4k-high" becomes "4k High".
func bitrateSlotLabel(key string) string {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return key
	}
	tier := strings.ToUpper(parts[1][:1]) + parts[1][1:]
	return parts[0] + " " + tier
}
