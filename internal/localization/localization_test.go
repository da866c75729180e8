package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledLocales(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	assert.True(t, l.Supports("en"))
	assert.True(t, l.Supports("rw"))
	assert.Contains(t, l.GetString("en", "ussd.welcome"), "1. Submit complaint")
	assert.Contains(t, l.GetString("rw", "ussd.welcome"), "1. Tanga ikibazo")
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.json":   {Data: []byte(`{"greet":"Hello","only_en":"English only"}`)},
		"l/rw.json":   {Data: []byte(`{"greet":"Muraho"}`)},
		"l/notes.txt": {Data: []byte("ignored")},
	}
	l, err := NewFromFS(fsys, "l")
	require.NoError(t, err)

	assert.Equal(t, "Muraho", l.GetString("rw", "greet"))
	assert.Equal(t, "English only", l.GetString("rw", "only_en"))
	assert.Equal(t, "Hello", l.GetString("fr", "greet"))
	assert.Equal(t, "missing.key", l.GetString("rw", "missing.key"))
}

func TestFormat_PositionalArgs(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Redeem Airtime 500 RWF for 100 points?\n1. Confirm\n2. Cancel",
		l.Format("en", "ussd.confirm_redeem", "Airtime", 500, 100))
	assert.Equal(t, "Gukoresha amanota 100 ubone Airtime 500 RWF?\n1. Emeza\n2. Reka",
		l.Format("rw", "ussd.confirm_redeem", "Airtime", 500, 100))
}

func TestNewFromFS_Errors(t *testing.T) {
	_, err := NewFromFS(fstest.MapFS{"l/rw.json": {Data: []byte(`{}`)}}, "l")
	assert.Error(t, err, "english bundle is required")

	_, err = NewFromFS(fstest.MapFS{"l/en.json": {Data: []byte(`{not json`)}}, "l")
	assert.Error(t, err)

	_, err = NewFromFS(fstest.MapFS{}, "absent")
	assert.Error(t, err)
}
