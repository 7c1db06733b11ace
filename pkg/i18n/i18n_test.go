package i18n

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLocales(t *testing.T) {
	t.Helper()
	locales, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	require.NoError(t, Load(locales))
}

func TestTranslationsPerLanguage(t *testing.T) {
	loadLocales(t)

	en := NewLocalizer("en")
	tr := NewLocalizer("tr")

	assert.Equal(t, "Invalid email or password", en.T("auth.invalidCredentials"))
	assert.Equal(t, "Geçersiz email veya şifre", tr.T("auth.invalidCredentials"))
}

func TestUnknownKeyFallsBackToKey(t *testing.T) {
	loadLocales(t)

	l := NewLocalizer("tr")
	assert.Equal(t, "nonexistent.key", l.T("nonexistent.key"))
}

func TestUnsupportedLanguageFallsBackToDefault(t *testing.T) {
	loadLocales(t)

	l := NewLocalizer("de")
	assert.Equal(t, "Invalid email or password", l.T("auth.invalidCredentials"))
}

func TestTWithParams(t *testing.T) {
	loadLocales(t)

	l := NewLocalizer("en")
	msg := l.TWithParams("auth.loginSuccess", map[string]string{"username": "kim"})
	assert.Equal(t, "Signed in as kim", msg)
}

func TestAllKeysHaveTurkishCounterparts(t *testing.T) {
	loadLocales(t)

	for key := range translations[DefaultLanguage] {
		_, ok := translations["tr"][key]
		assert.True(t, ok, "missing tr translation for %s", key)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"tr_TR.UTF-8", "tr"},
		{"tr_TR", "tr"},
		{"tr", "tr"},
		{"en_US.UTF-8", "en"},
		{"EN", "en"},
		{"de_DE.UTF-8", "en"},
		{"", "en"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectLanguage(tc.locale), "locale %q", tc.locale)
	}
}
