package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1500, s.WorkDuration)
	assert.Equal(t, 300, s.BreakDuration)
	assert.Equal(t, 900, s.LongBreakDuration)
	assert.Equal(t, 4, s.SessionsBeforeLongBreak)
	assert.Equal(t, SoundChime, s.NotificationSound)
	assert.Equal(t, s, s.Sanitized())
}

func TestSettingsApply(t *testing.T) {
	base := DefaultSettings()

	t.Run("empty patch", func(t *testing.T) {
		out, changed := base.Apply(SettingsPatch{})
		assert.False(t, changed)
		assert.Equal(t, base, out)
	})

	t.Run("same value is not a change", func(t *testing.T) {
		_, changed := base.Apply(SettingsPatch{WorkDuration: ptr(base.WorkDuration)})
		assert.False(t, changed)
	})

	t.Run("every field", func(t *testing.T) {
		out, changed := base.Apply(SettingsPatch{
			WorkDuration:            ptr(3000),
			BreakDuration:           ptr(600),
			LongBreakDuration:       ptr(1200),
			SessionsBeforeLongBreak: ptr(2),
			NotificationSound:       ptr(SoundNature),
			Volume:                  ptr(0.0),
		})
		require.True(t, changed)
		assert.Equal(t, Settings{
			WorkDuration:            3000,
			BreakDuration:           600,
			LongBreakDuration:       1200,
			SessionsBeforeLongBreak: 2,
			NotificationSound:       SoundNature,
			Volume:                  0,
		}, out)
	})

	t.Run("volume bounds are inclusive", func(t *testing.T) {
		out, _ := base.Apply(SettingsPatch{Volume: ptr(1.0)})
		assert.Equal(t, 1.0, out.Volume)
	})
}

func TestSettingsSanitized(t *testing.T) {
	s := Settings{
		WorkDuration:            60,
		BreakDuration:           -1,
		LongBreakDuration:       0,
		SessionsBeforeLongBreak: 3,
		NotificationSound:       "bogus",
		Volume:                  0.25,
	}.Sanitized()

	def := DefaultSettings()
	assert.Equal(t, 60, s.WorkDuration)
	assert.Equal(t, def.BreakDuration, s.BreakDuration)
	assert.Equal(t, def.LongBreakDuration, s.LongBreakDuration)
	assert.Equal(t, 3, s.SessionsBeforeLongBreak)
	assert.Equal(t, def.NotificationSound, s.NotificationSound)
	assert.Equal(t, 0.25, s.Volume)
}

func TestSettingsPatchIsEmpty(t *testing.T) {
	assert.True(t, SettingsPatch{}.IsEmpty())
	assert.False(t, SettingsPatch{Volume: ptr(0.1)}.IsEmpty())
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"25", 1500, false},
		{" 1 ", 60, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"2.5", 0, true},
		{"1:30", 90, false},
		{"0:45", 45, false},
		{"0:00", 0, true},
		{"1:5", 0, true},
		{"1:60", 0, true},
		{"-1:30", 0, true},
		{"-0:30", 0, true},
		{"-307445734561825861", 0, true},
		{"1440", 24 * 60 * 60, false},
		{"1441", 0, true},
		{"1440:01", 0, true},
		{"307445734561825861", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinutes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	for _, secs := range []int{60, 90, 30, 25 * 60, 61, MaxDuration} {
		got, err := ParseMinutes(FormatMinutes(secs))
		require.NoError(t, err, FormatMinutes(secs))
		assert.Equal(t, secs, got)
	}
	assert.Equal(t, "25", FormatMinutes(1500))
	assert.Equal(t, "1:30", FormatMinutes(90))
	assert.Equal(t, "0:05", FormatMinutes(5))
}

func TestParseSessions(t *testing.T) {
	n, err := ParseSessions("6")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = ParseSessions("0")
	assert.Error(t, err)
	_, err = ParseSessions("four")
	assert.Error(t, err)
}

func TestParseVolume(t *testing.T) {
	v, err := ParseVolume("80")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, v, 1e-9)

	v, err = ParseVolume("100%")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = ParseVolume("101")
	assert.Error(t, err)
	_, err = ParseVolume("-1")
	assert.Error(t, err)
	_, err = ParseVolume("loud")
	assert.Error(t, err)
}

func TestParseSound(t *testing.T) {
	for _, s := range Sounds() {
		got, err := ParseSound(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSound(" Ring ")
	require.NoError(t, err)
	assert.Equal(t, SoundRing, got)

	_, err = ParseSound("gong")
	assert.Error(t, err)
}

func TestPhaseLabelAndKind(t *testing.T) {
	assert.Equal(t, "Focus", PhaseWork.Label())
	assert.Equal(t, "Short Break", PhaseBreak.Label())
	assert.Equal(t, "Long Break", PhaseLongBreak.Label())

	assert.Equal(t, KindWork, PhaseWork.Kind())
	assert.Equal(t, KindBreak, PhaseBreak.Kind())
	assert.Equal(t, KindBreak, PhaseLongBreak.Kind())
}
