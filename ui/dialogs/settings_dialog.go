package dialogs

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/internal/config"
	"verbum-lector/internal/editor"
	"verbum-lector/internal/transcription"
	"verbum-lector/internal/translation"
	"verbum-lector/models"
	"verbum-lector/services"
)

const sameAsTranscription = "same as transcription"

// SettingsDialog edits provider selection, API keys and editor behavior.
type SettingsDialog struct {
	window fyne.Window
	config *models.Config

	transcriptionSelect *widget.Select
	detectionSelect     *widget.Select
	translationSelect   *widget.Select

	geminiKeyEntry   *widget.Entry
	geminiModelEntry *widget.Entry
	groqKeyEntry     *widget.Entry
	deepSeekKeyEntry *widget.Entry
	openAIKeyEntry   *widget.Entry

	ollamaHostEntry  *widget.Entry
	ollamaModelEntry *widget.Entry
	ollamaSettings   *fyne.Container

	lineBreakSelect  *widget.Select
	preprocessCheck  *widget.Check
	firstSegmentText *widget.Entry

	OnSave func(config *models.Config)
}

// NewSettingsDialog creates a dialog editing a copy of cfg.
func NewSettingsDialog(window fyne.Window, cfg *models.Config) *SettingsDialog {
	c := *cfg
	return &SettingsDialog{window: window, config: &c}
}

// Show displays the settings dialog
func (d *SettingsDialog) Show() {
	scroll := container.NewVScroll(d.build())
	scroll.SetMinSize(fyne.NewSize(480, 520))

	dialog.ShowCustomConfirm("Settings", "Save", "Cancel", scroll, func(save bool) {
		if !save {
			return
		}
		if err := d.saveSettings(); err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		if d.OnSave != nil {
			d.OnSave(d.config)
		}
	}, d.window)
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func (d *SettingsDialog) build() fyne.CanvasObject {
	d.transcriptionSelect = widget.NewSelect(names(transcription.Providers()), nil)
	d.transcriptionSelect.SetSelected(getOrDefault(d.config.TranscriptionProvider, models.ProviderGemini))

	d.detectionSelect = widget.NewSelect(append([]string{sameAsTranscription}, names(transcription.Providers())...), nil)
	d.detectionSelect.SetSelected(getOrDefault(d.config.DetectionProvider, sameAsTranscription))

	d.translationSelect = widget.NewSelect(names(translation.Providers()), func(string) {
		d.updateConditionalUI()
	})

	d.geminiKeyEntry = passwordEntry("AIza...", d.config.GeminiAPIKey)
	d.geminiModelEntry = widget.NewEntry()
	d.geminiModelEntry.SetPlaceHolder(config.DefaultGeminiModel)
	d.geminiModelEntry.SetText(d.config.GeminiModel)
	d.groqKeyEntry = passwordEntry("gsk_...", d.config.GroqAPIKey)
	d.deepSeekKeyEntry = passwordEntry("sk-...", d.config.DeepSeekKey)
	d.openAIKeyEntry = passwordEntry("sk-...", d.config.OpenAIKey)

	d.ollamaHostEntry = widget.NewEntry()
	d.ollamaHostEntry.SetPlaceHolder(config.DefaultOllamaHost)
	d.ollamaHostEntry.SetText(d.config.OllamaHost)
	d.ollamaModelEntry = widget.NewEntry()
	d.ollamaModelEntry.SetPlaceHolder(config.DefaultOllamaModel)
	d.ollamaModelEntry.SetText(d.config.OllamaModel)

	checkBtn := widget.NewButton("Check Ollama", d.checkOllama)
	d.ollamaSettings = container.NewVBox(
		widget.NewSeparator(),
		widget.NewLabel("Ollama Settings"),
		widget.NewForm(
			widget.NewFormItem("Host", d.ollamaHostEntry),
			widget.NewFormItem("Model", d.ollamaModelEntry),
		),
		checkBtn,
	)
	// Selecting triggers updateConditionalUI, so the Ollama box must exist first.
	d.translationSelect.SetSelected(getOrDefault(d.config.TranslationProvider, models.ProviderGemini))

	d.lineBreakSelect = widget.NewSelect([]string{
		editor.LineBreaksReject.String(),
		editor.LineBreaksAccept.String(),
		editor.LineBreaksSplit.String(),
	}, nil)
	d.lineBreakSelect.SetSelected(editor.ParseLineBreakPolicy(d.config.LineBreakPolicy).String())

	d.preprocessCheck = widget.NewCheck("Clean sentences before translating", nil)
	d.preprocessCheck.SetChecked(d.config.PreprocessSentences)

	d.firstSegmentText = widget.NewEntry()
	d.firstSegmentText.SetText(fmt.Sprint(d.config.FirstSegmentID))

	providersForm := widget.NewForm(
		widget.NewFormItem("Transcription", d.transcriptionSelect),
		widget.NewFormItem("Language detection", d.detectionSelect),
		widget.NewFormItem("Translation", d.translationSelect),
	)
	keysForm := widget.NewForm(
		widget.NewFormItem("Gemini API Key", d.geminiKeyEntry),
		widget.NewFormItem("Gemini Model", d.geminiModelEntry),
		widget.NewFormItem("Groq API Key", d.groqKeyEntry),
		widget.NewFormItem("DeepSeek API Key", d.deepSeekKeyEntry),
		widget.NewFormItem("OpenAI API Key", d.openAIKeyEntry),
	)
	editorForm := widget.NewForm(
		widget.NewFormItem("Line breaks", d.lineBreakSelect),
		widget.NewFormItem("First segment id", d.firstSegmentText),
	)

	d.updateConditionalUI()

	return container.NewVBox(
		widget.NewLabel("Providers"),
		providersForm,
		d.ollamaSettings,
		widget.NewSeparator(),
		widget.NewLabel("API Keys"),
		keysForm,
		widget.NewSeparator(),
		widget.NewLabel("Editor"),
		editorForm,
		d.preprocessCheck,
	)
}

func passwordEntry(placeholder, value string) *widget.Entry {
	e := widget.NewPasswordEntry()
	e.SetPlaceHolder(placeholder)
	e.SetText(value)
	return e
}

func (d *SettingsDialog) updateConditionalUI() {
	if d.ollamaSettings == nil {
		return
	}
	if d.translationSelect.Selected == models.ProviderOllama {
		d.ollamaSettings.Show()
	} else {
		d.ollamaSettings.Hide()
	}
}

func (d *SettingsDialog) checkOllama() {
	host := getOrDefault(strings.TrimSpace(d.ollamaHostEntry.Text), config.DefaultOllamaHost)
	model := getOrDefault(strings.TrimSpace(d.ollamaModelEntry.Text), config.DefaultOllamaModel)
	svc := services.NewOllamaTranslationService(host, model, false)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.OllamaCheckTimeout)
		defer cancel()
		err := svc.CheckInstalled(ctx)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			dialog.ShowInformation("Ollama", fmt.Sprintf("%s is available at %s", model, host), d.window)
		})
	}()
}

func (d *SettingsDialog) saveSettings() error {
	var first int
	if _, err := fmt.Sscan(strings.TrimSpace(d.firstSegmentText.Text), &first); err != nil || first < 0 {
		return fmt.Errorf("first segment id must be a non-negative number")
	}

	d.config.TranscriptionProvider = d.transcriptionSelect.Selected
	d.config.DetectionProvider = d.detectionSelect.Selected
	if d.config.DetectionProvider == sameAsTranscription {
		d.config.DetectionProvider = ""
	}
	d.config.TranslationProvider = d.translationSelect.Selected

	d.config.GeminiAPIKey = strings.TrimSpace(d.geminiKeyEntry.Text)
	d.config.GeminiModel = strings.TrimSpace(d.geminiModelEntry.Text)
	d.config.GroqAPIKey = strings.TrimSpace(d.groqKeyEntry.Text)
	d.config.DeepSeekKey = strings.TrimSpace(d.deepSeekKeyEntry.Text)
	d.config.OpenAIKey = strings.TrimSpace(d.openAIKeyEntry.Text)
	d.config.OllamaHost = strings.TrimSpace(d.ollamaHostEntry.Text)
	d.config.OllamaModel = strings.TrimSpace(d.ollamaModelEntry.Text)

	d.config.LineBreakPolicy = d.lineBreakSelect.Selected
	d.config.PreprocessSentences = d.preprocessCheck.Checked
	d.config.FirstSegmentID = first

	return d.config.Save()
}

func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
