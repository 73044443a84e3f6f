package ui

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/archivepull/archive-pull/internal/config"
	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/pipeline"
)

// Metadata field display labels, in form order
var metadataFieldLabels = map[string]string{
	model.MetadataFieldTitle:      "Title",
	model.MetadataFieldChannel:    "Channel",
	model.MetadataFieldUploadDate: "Upload Date",
	model.MetadataFieldURL:        "Source URL",
}

// RootUI represents the main UI structure
type RootUI struct {
	window   fyne.Window
	app      fyne.App
	settings *config.Settings
	service  *pipeline.Service

	urlEntry        *widget.Entry
	infoLabel       *widget.Label
	codecSelect     *widget.Select
	containerRadio  *widget.RadioGroup
	transcriptCheck *widget.Check
	metadataChecks  map[string]*widget.Check
	destinationBtn  *widget.Button

	startBtn  *widget.Button
	cancelBtn *widget.Button

	phaseLabel  *widget.Label
	progressBar *widget.ProgressBar
	logLabel    *widget.Label
	logScroll   *container.Scroll

	settingsDialog *SettingsDialog

	// URL preview debouncing
	previewMutex sync.Mutex
	previewSeq   int

	// Log retention
	logMutex sync.Mutex
	logLines []string
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, service *pipeline.Service) *RootUI {
	settings := config.NewSettings(app)

	ui := &RootUI{
		window:         window,
		app:            app,
		settings:       settings,
		service:        service,
		metadataChecks: make(map[string]*widget.Check),
	}

	log.Printf("RootUI initialized with pipeline service: %v", ui.service != nil)

	// Wire the unified progress stream and raw log stream
	service.SetProgressCallback(ui.onProgressEvent)
	service.SetLogCallback(ui.onLogLine)

	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()
	ui.settingsDialog = NewSettingsDialog(ui.settings, ui.window)

	// URL entry with debounced video info preview
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("Enter video URL")
	ui.urlEntry.Validator = ui.validateURL
	ui.urlEntry.OnChanged = ui.onURLChanged
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onStartClick()
	}

	ui.infoLabel = widget.NewLabel(DashPlaceholder)
	ui.infoLabel.Wrapping = fyne.TextWrapWord

	// Request form
	ui.codecSelect = widget.NewSelect(ui.settings.GetCodecOptions(), func(codec string) {
		ui.settings.SetCodec(codec)
	})
	ui.codecSelect.SetSelected(ui.settings.GetCodec())

	ui.containerRadio = widget.NewRadioGroup(config.ContainerOptions, func(container string) {
		if container != "" {
			ui.settings.SetContainer(container)
		}
	})
	ui.containerRadio.Horizontal = true
	ui.containerRadio.SetSelected(ui.settings.GetContainer())

	ui.transcriptCheck = widget.NewCheck("Fetch transcript", func(checked bool) {
		ui.settings.SetTranscriptRequested(checked)
	})
	ui.transcriptCheck.SetChecked(ui.settings.GetTranscriptRequested())

	metadataRow := container.NewHBox(widget.NewLabel("Embed:"))
	for _, field := range config.MetadataFieldKeys {
		field := field
		check := widget.NewCheck(metadataFieldLabels[field], func(checked bool) {
			ui.settings.SetMetadataField(field, checked)
		})
		check.SetChecked(ui.settings.GetMetadataField(field))
		ui.metadataChecks[field] = check
		metadataRow.Add(check)
	}

	ui.destinationBtn = widget.NewButton(IconFolder+" "+ui.settings.GetDestinationDirectory(), ui.onBrowseDestination)

	// Run controls
	ui.startBtn = widget.NewButton("Start", ui.onStartClick)
	ui.startBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton("Cancel", ui.onCancelClick)
	ui.cancelBtn.Disable()

	settingsBtn := widget.NewButton(IconSettings, ui.settingsDialog.Show)
	settingsBtn.Importance = widget.LowImportance

	// Progress panel
	ui.phaseLabel = widget.NewLabel(string(model.PhaseIdle))
	ui.progressBar = widget.NewProgressBar()

	ui.logLabel = widget.NewLabel("")
	ui.logLabel.Wrapping = fyne.TextWrapWord
	ui.logLabel.TextStyle = fyne.TextStyle{Monospace: true}
	ui.logScroll = container.NewVScroll(ui.logLabel)
	ui.logScroll.SetMinSize(fyne.NewSize(0, LogViewMinHeight))

	// Logo
	var logoImage *canvas.Image
	if logo, err := LoadLogoResource(); err == nil {
		logoImage = canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
	}

	leading := container.NewHBox(settingsBtn)
	if logoImage != nil {
		leading = container.NewHBox(logoImage, settingsBtn)
	}
	topPanel := container.NewBorder(nil, nil, leading, container.NewHBox(ui.startBtn, ui.cancelBtn), ui.urlEntry)

	form := container.NewVBox(
		ui.infoLabel,
		container.NewHBox(widget.NewLabel("Codec:"), ui.codecSelect, widget.NewLabel("Container:"), ui.containerRadio),
		container.NewHBox(ui.transcriptCheck, widget.NewSeparator(), ui.destinationBtn),
		metadataRow,
	)

	progressPanel := container.NewBorder(nil, nil, ui.phaseLabel, nil, ui.progressBar)

	content := container.NewBorder(
		container.NewVBox(topPanel, form, widget.NewSeparator(), progressPanel),
		nil, nil, nil,
		ui.logScroll,
	)

	ui.window.SetContent(content)
	ui.window.Resize(fyne.NewSize(WindowMinWidth, WindowMinHeight))
}

// createMenu builds the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem("Settings", func() {
		ui.settingsDialog.Show()
	})
	fileMenu := fyne.NewMenu("File", settingsItem)
	ui.window.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

// validateURL checks that the entry holds an absolute http(s) URL
func (ui *RootUI) validateURL(text string) error {
	if text == "" {
		return nil
	}
	parsed, err := url.Parse(text)
	if err != nil {
		return fmt.Errorf("invalid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// onURLChanged schedules a debounced video info preview for the entered URL
func (ui *RootUI) onURLChanged(text string) {
	ui.previewMutex.Lock()
	ui.previewSeq++
	seq := ui.previewSeq
	ui.previewMutex.Unlock()

	if ui.validateURL(text) != nil || text == "" {
		return
	}

	go func() {
		time.Sleep(URLPreviewDebounce)

		ui.previewMutex.Lock()
		stale := seq != ui.previewSeq
		ui.previewMutex.Unlock()
		if stale {
			return
		}

		fyne.Do(func() {
			ui.infoLabel.SetText("Fetching video info" + MiddleDotSeparator + text)
		})

		ctx, cancel := context.WithTimeout(context.Background(), PreviewTimeout)
		defer cancel()

		descriptor, err := ui.service.GetVideoInfo(ctx, text)

		ui.previewMutex.Lock()
		stale = seq != ui.previewSeq
		ui.previewMutex.Unlock()
		if stale {
			return
		}

		fyne.Do(func() {
			if err != nil {
				ui.infoLabel.SetText(DashPlaceholder)
				return
			}
			ui.infoLabel.SetText(describeVideo(descriptor))
		})
	}()
}

// describeVideo renders the preview line for a probed video
func describeVideo(d *model.VideoDescriptor) string {
	var b strings.Builder
	b.WriteString(d.Title)
	if d.Channel != "" {
		b.WriteString(MiddleDotSeparator + d.Channel)
	}
	if d.DurationSeconds > 0 {
		seconds := int(d.DurationSeconds)
		b.WriteString(fmt.Sprintf(MiddleDotSeparator+"%d:%02d", seconds/60, seconds%60))
	}
	if d.IsHDR {
		b.WriteString(MiddleDotSeparator + IconHDR + " HDR")
	}
	return b.String()
}

// onBrowseDestination handles destination directory selection
func (ui *RootUI) onBrowseDestination() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.settings.SetDestinationDirectory(uri.Path())
		ui.destinationBtn.SetText(IconFolder + " " + uri.Path())
	}, ui.window)
}

// onStartClick launches one pipeline run in the background
func (ui *RootUI) onStartClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" || ui.validateURL(urlText) != nil {
		dialog.ShowInformation("Invalid URL", "Enter a valid video URL first.", ui.window)
		return
	}

	req := model.PipelineRequest{
		URL:            urlText,
		DestinationDir: ui.settings.GetDestinationDirectory(),
		Codec:          ui.settings.GetCodec(),
		Container:      ui.settings.GetContainer(),
		Bitrates:       ui.settings.GetBitrates(),
		HDROverride:    ui.settings.GetHDROverride(),
		Transcript:     ui.settings.GetTranscriptRequested(),
		MetadataFields: ui.settings.GetMetadataFields(),
	}

	ui.startBtn.Disable()
	ui.cancelBtn.Enable()
	ui.clearLog()
	ui.phaseLabel.SetText(string(model.PhaseDownloading))
	ui.progressBar.SetValue(0)

	go func() {
		result := ui.service.Run(context.Background(), req)

		fyne.Do(func() {
			ui.startBtn.Enable()
			ui.cancelBtn.Disable()
			if result.Success {
				ui.phaseLabel.SetText(string(model.PhaseTranscodingComplete))
				ui.progressBar.SetValue(1)
				dialog.ShowInformation("Done", result.Message, ui.window)
			} else {
				ui.phaseLabel.SetText(string(model.PhaseErrored))
				dialog.ShowInformation("Run ended", result.Message, ui.window)
			}
		})
	}()
}

// onCancelClick aborts the active run
func (ui *RootUI) onCancelClick() {
	ui.cancelBtn.Disable()
	ui.service.Cancel()
}

// onProgressEvent renders one unified progress event. Called from the
// pipeline goroutine, so all widget mutation goes through fyne.Do.
func (ui *RootUI) onProgressEvent(event model.ProgressEvent) {
	fyne.Do(func() {
		ui.phaseLabel.SetText(fmt.Sprintf(ProgressLabelFormat, event.Phase, event.Percent))
		ui.progressBar.SetValue(event.Percent / 100)
	})
}

// onLogLine appends one raw subprocess line to the log view
func (ui *RootUI) onLogLine(line string) {
	ui.logMutex.Lock()
	ui.logLines = append(ui.logLines, line)
	if len(ui.logLines) > MaxLogLines {
		ui.logLines = ui.logLines[len(ui.logLines)-MaxLogLines:]
	}
	text := strings.Join(ui.logLines, "\n")
	ui.logMutex.Unlock()

	fyne.Do(func() {
		ui.logLabel.SetText(text)
		ui.logScroll.ScrollToBottom()
	})
}

func (ui *RootUI) clearLog() {
	ui.logMutex.Lock()
	ui.logLines = nil
	ui.logMutex.Unlock()
	ui.logLabel.SetText("")
}
