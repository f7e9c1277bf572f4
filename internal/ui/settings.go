package ui

import (
	"fmt"
	"strconv"

	"pomodoro/internal/timer"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// settingsValues backs the form fields. Everything is text so that a bad
// entry can be ignored instead of blocking the whole form.
type settingsValues struct {
	Work      string
	Break     string
	LongBreak string
	Sessions  string
	Sound     string
	Volume    string
}

// SettingsForm edits the timer settings. Invalid fields are dropped
// individually when the form is submitted.
type SettingsForm struct {
	Completed bool
	Cancelled bool

	form      *huh.Form
	values    settingsValues
	initial   settingsValues
	previewer Previewer
	testKey   key.Binding
}

func NewSettingsForm(current timer.Settings, previewer Previewer) *SettingsForm {
	sf := &SettingsForm{
		values: settingsValues{
			Work:      timer.FormatMinutes(current.WorkDuration),
			Break:     timer.FormatMinutes(current.BreakDuration),
			LongBreak: timer.FormatMinutes(current.LongBreakDuration),
			Sessions:  strconv.Itoa(current.SessionsBeforeLongBreak),
			Sound:     string(current.NotificationSound),
			Volume:    strconv.Itoa(int(current.Volume*100 + 0.5)),
		},
		previewer: previewer,
		testKey: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "test sound"),
		),
	}

	sounds := make([]huh.Option[string], 0, len(timer.Sounds()))
	for _, s := range timer.Sounds() {
		sounds = append(sounds, huh.NewOption(soundLabel(s), string(s)))
	}

	sf.initial = sf.values

	sf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Focus (minutes or m:ss)").
				Value(&sf.values.Work).
				CharLimit(7),
			huh.NewInput().
				Title("Short break (minutes or m:ss)").
				Value(&sf.values.Break).
				CharLimit(7),
			huh.NewInput().
				Title("Long break (minutes or m:ss)").
				Value(&sf.values.LongBreak).
				CharLimit(7),
			huh.NewInput().
				Title("Sessions before long break").
				Value(&sf.values.Sessions).
				CharLimit(3),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification sound").
				Description("ctrl+t plays it").
				Options(sounds...).
				Value(&sf.values.Sound),
			huh.NewInput().
				Title("Volume (%)").
				Value(&sf.values.Volume).
				CharLimit(4),
		),
	).WithShowHelp(true)

	return sf
}

func soundLabel(s timer.Sound) string {
	switch s {
	case timer.SoundChime:
		return "Chime"
	case timer.SoundDigital:
		return "Digital"
	case timer.SoundRing:
		return "Ring"
	case timer.SoundNature:
		return "Nature"
	}
	return string(s)
}

func (sf *SettingsForm) Init() tea.Cmd {
	return sf.form.Init()
}

func (sf *SettingsForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.String() == "esc" || keyMsg.String() == "ctrl+c":
			sf.Cancelled = true
			sf.Completed = true
			return sf, nil
		case key.Matches(keyMsg, sf.testKey):
			return sf, sf.previewCmd()
		}
	}

	form, cmd := sf.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		sf.form = f
	}
	if sf.form.State == huh.StateCompleted {
		sf.Completed = true
		return sf, nil
	}
	return sf, cmd
}

func (sf *SettingsForm) View() string {
	if sf.form == nil {
		return ""
	}
	return sf.form.View()
}

// previewCmd plays the selected sound at the entered volume. An invalid
// volume plays at full volume.
func (sf *SettingsForm) previewCmd() tea.Cmd {
	sound, err := timer.ParseSound(sf.values.Sound)
	if err != nil {
		sound = timer.SoundChime
	}
	volume, err := timer.ParseVolume(sf.values.Volume)
	if err != nil {
		volume = 1
	}
	return previewCmd(sf.previewer, sound, volume)
}

// Patch converts the edited values into a settings patch. Fields left as
// they were prefilled are not part of the patch, so saving an untouched form
// changes nothing. Edited fields that do not parse are left out and named in
// the second result.
func (sf *SettingsForm) Patch() (timer.SettingsPatch, []string) {
	var (
		patch   timer.SettingsPatch
		ignored []string
	)
	field := func(name, raw, initial string, parse func(string) error) {
		if raw == initial {
			return
		}
		if err := parse(raw); err != nil {
			ignored = append(ignored, name)
		}
	}
	minutes := func(dst **int) func(string) error {
		return func(raw string) error {
			v, err := timer.ParseMinutes(raw)
			if err == nil {
				*dst = &v
			}
			return err
		}
	}
	v, in := sf.values, sf.initial
	field("focus", v.Work, in.Work, minutes(&patch.WorkDuration))
	field("short break", v.Break, in.Break, minutes(&patch.BreakDuration))
	field("long break", v.LongBreak, in.LongBreak, minutes(&patch.LongBreakDuration))
	field("sessions", v.Sessions, in.Sessions, func(raw string) error {
		n, err := timer.ParseSessions(raw)
		if err == nil {
			patch.SessionsBeforeLongBreak = &n
		}
		return err
	})
	field("sound", v.Sound, in.Sound, func(raw string) error {
		s, err := timer.ParseSound(raw)
		if err == nil {
			patch.NotificationSound = &s
		}
		return err
	})
	field("volume", v.Volume, in.Volume, func(raw string) error {
		f, err := timer.ParseVolume(raw)
		if err == nil {
			patch.Volume = &f
		}
		return err
	})
	return patch, ignored
}

// ignoredStatus formats the fields a settings submit dropped.
func ignoredStatus(ignored []string) string {
	if len(ignored) == 0 {
		return ""
	}
	return fmt.Sprintf("Ignored invalid %s", joinList(ignored))
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, it := range items[1 : len(items)-1] {
		out += ", " + it
	}
	return out + " and " + items[len(items)-1]
}
