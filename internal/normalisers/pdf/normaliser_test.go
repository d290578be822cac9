package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// fakeSource serves canned page texts; a nil entry fails that page.
type fakeSource struct {
	pages []*string
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) PageText(_ context.Context, number int) (string, error) {
	p := f.pages[number-1]
	if p == nil {
		return "", errors.New("corrupt page")
	}
	return *p, nil
}

func (f *fakeSource) Close() error { return nil }

type fakeOpener struct {
	source *fakeSource
	err    error
}

func (f *fakeOpener) Open(_ []byte) (driven.PageSource, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.source, nil
}

func str(s string) *string { return &s }

func rawDoc() *domain.RawDocument {
	return &domain.RawDocument{
		Name:      "2024_en_q3_consolidated.pdf",
		URI:       "https://example.com/2024/q3.pdf",
		Statement: domain.StatementInfo{Year: "2024", Language: "en", Quarter: domain.Q3, Scope: domain.ScopeConsolidated},
		Content:   []byte("%PDF-fake"),
	}
}

func TestNormalise_ClassifiesTextAndImagePages(t *testing.T) {
	// 3-page document: [text, image, text].
	opener := &fakeOpener{source: &fakeSource{pages: []*string{
		str("Net interest income for the period was EGP 12.3bn, up 18% year on year."),
		str("  \n "),
		str("Total assets reached EGP 800bn as of September 2024, consolidated basis."),
	}}}
	n := New(opener)

	doc, err := n.Normalise(context.Background(), rawDoc())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)

	assert.Equal(t, domain.PageText, doc.Pages[0].Class)
	assert.Equal(t, domain.PageImage, doc.Pages[1].Class)
	assert.Equal(t, domain.PageText, doc.Pages[2].Class)

	// Every page has exactly one class.
	for _, p := range doc.Pages {
		assert.Contains(t, []domain.PageClass{domain.PageText, domain.PageImage}, p.Class)
	}
}

func TestNormalise_ContentLayout(t *testing.T) {
	opener := &fakeOpener{source: &fakeSource{pages: []*string{
		str("Income statement for the nine months ended September 2024."),
		str(""),
	}}}
	n := New(opener)

	doc, err := n.Normalise(context.Background(), rawDoc())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.Content, "File: 2024_en_q3_consolidated.pdf\n"))
	assert.Contains(t, doc.Content, "## Page 1")
	assert.Contains(t, doc.Content, "[page 2: image-only, text not extracted]")
	// Page order is preserved in the combined text.
	assert.Less(t, strings.Index(doc.Content, "## Page 1"), strings.Index(doc.Content, "## Page 2"))
}

func TestNormalise_SkipsUnrecoverablePages(t *testing.T) {
	opener := &fakeOpener{source: &fakeSource{pages: []*string{
		str("First quarter statement of financial position and related notes."),
		nil, // corrupt
		str("Notes to the separate financial statements, continued from above."),
	}}}
	n := New(opener)

	doc, err := n.Normalise(context.Background(), rawDoc())
	require.NoError(t, err)

	// Corrupt page is skipped, ingestion continues with the rest. The
	// reader's page count is kept so the loss stays visible.
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, 3, doc.Pages[1].Number)
	assert.Equal(t, 3, doc.PageCount)
}

func TestNormalise_AllPagesUnrecoverable(t *testing.T) {
	opener := &fakeOpener{source: &fakeSource{pages: []*string{nil, nil}}}
	n := New(opener)

	_, err := n.Normalise(context.Background(), rawDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestNormalise_OpenFailure(t *testing.T) {
	opener := &fakeOpener{err: domain.ErrParse}
	n := New(opener)

	_, err := n.Normalise(context.Background(), rawDoc())
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestNormalise_NilDocument(t *testing.T) {
	n := New(&fakeOpener{})

	_, err := n.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTextThreshold(t *testing.T) {
	// 10 runes of text: below the default threshold, above a custom one.
	opener := &fakeOpener{source: &fakeSource{pages: []*string{str("ten chars!")}}}

	doc, err := New(opener).Normalise(context.Background(), rawDoc())
	require.NoError(t, err)
	assert.Equal(t, domain.PageImage, doc.Pages[0].Class)

	doc, err = New(opener, WithTextThreshold(5)).Normalise(context.Background(), rawDoc())
	require.NoError(t, err)
	assert.Equal(t, domain.PageText, doc.Pages[0].Class)
}

func TestNormaliseWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses blank line runs",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "strips trailing spaces",
			in:   "a   \nb\t\n",
			want: "a\nb",
		},
		{
			name: "normalises crlf",
			in:   "a\r\nb",
			want: "a\nb",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normaliseWhitespace(tc.in))
		})
	}
}
