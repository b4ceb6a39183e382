package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/i18n"
)

func testSummary() ReportSummary {
	return ReportSummary{
		ReportID:      uuid.MustParse("5f1c2a3b-0000-4000-8000-000000000001"),
		TypeName:      "Abfall",
		Address:       "Postplatz, Zug",
		Latitude:      47.17,
		Longitude:     8.52,
		Description:   "Overflowing bin <script>",
		ReporterName:  "Anna Muster",
		ReporterEmail: "anna@example.com",
		Locale:        valueobject.LocaleEN,
	}
}

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(Config{
		From:         "Meldungen <noreply@zug.ch>",
		InternalTo:   []string{"team@zug.ch"},
		InternalBCC:  []string{"archiv@zug.ch"},
		InternalLang: valueobject.LocaleDE,
		PublicAppURL: "https://melden.zug.ch",
	}, i18n.MustLoad())
	require.NoError(t, err)
	return c
}

func TestComposer_Internal(t *testing.T) {
	msg, err := newComposer(t).Internal(testSummary())
	require.NoError(t, err)

	assert.Equal(t, []string{"team@zug.ch"}, msg.To)
	assert.Equal(t, []string{"archiv@zug.ch"}, msg.BCC)
	assert.Equal(t, "Neue Meldung 5f1c2a3b: Abfall", msg.Subject)
	assert.Contains(t, msg.HTML, "https://melden.zug.ch/admin/reports/5f1c2a3b-0000-4000-8000-000000000001")
	assert.Contains(t, msg.HTML, "Overflowing bin &lt;script&gt;")
	assert.Contains(t, msg.Text, "E-Mail: anna@example.com")
	assert.NotContains(t, msg.Text, "Unterkategorie")
}

func TestComposer_ReporterUsesReportLocale(t *testing.T) {
	msg, err := newComposer(t).Reporter(testSummary())
	require.NoError(t, err)

	assert.Equal(t, []string{"anna@example.com"}, msg.To)
	assert.Empty(t, msg.BCC)
	assert.Equal(t, "Your report 5f1c2a3b", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Anna Muster")
	assert.Contains(t, msg.Text, "Report number: 5f1c2a3b-0000-4000-8000-000000000001")
	assert.NotContains(t, msg.Text, "anna@example.com")
}
