package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_RenderEnglish(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	title, body := tr.Render(context.Background(), LeaveRequested, map[string]any{
		"Name": "Arjun Singh",
		"Days": "3",
		"Type": "Casual Leave",
	})
	assert.Equal(t, "New Leave Request", title)
	assert.Equal(t, "Arjun Singh applied for 3 day(s) of Casual Leave.", body)
}

func TestTranslator_ContextLocale(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	ctx := WithLocale(context.Background(), "id")
	title, _ := tr.Render(ctx, ManualEntry, map[string]any{"Name": "Priya"})
	assert.Equal(t, "Entri Manual Tercatat", title)
}

func TestTranslator_UnknownLocaleFallsBack(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	ctx := WithLocale(context.Background(), "fr")
	title, _ := tr.Render(ctx, LeaveTypeAdded, map[string]any{"Name": "Exam Duty"})
	assert.Equal(t, "Configuration Updated", title)
}

func TestTranslator_UnknownMessageID(t *testing.T) {
	tr, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "NoSuchMessage", tr.T(context.Background(), "NoSuchMessage", nil))
}

func TestTranslator_Languages(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "id"}, tr.Languages())
}
