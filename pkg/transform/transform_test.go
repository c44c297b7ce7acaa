package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/transform"
)

func staticSource(families map[string][]string) *transform.Fonts {
	return &transform.Fonts{
		Catalog: fonts.NewStatic(families, "Fallback Sans"),
		Enabled: fonts.LanguageFontMap{},
	}
}

func TestTransformer_QuestionSingleFont(t *testing.T) {
	t.Parallel()

	tr := transform.New(staticSource(map[string][]string{"Japanese": {"FontX"}}))

	got, err := tr.Question(context.Background(), `<div class="Japanese">猫</div>`)
	require.NoError(t, err)

	want := `<div class="Japanese">猫</div>` + "\n" +
		`<span id="JapaneseFontName" class="tippyhover" style="display:none;">` +
		`<ruby><rb>JapaneseFont</rb><rt>FontX</rt></ruby></span>` + "\n" +
		"<script>\n" +
		`var JapaneseChosenFont = "FontX";` + "\n" +
		`var JapaneseTooltip = document.getElementById("JapaneseFontName");` + "\n" +
		"</script>\n" +
		"<script>\n" +
		`var qa = document.getElementById("qa");` + "\n" +
		`var randomFontStyleSheet = document.createElement("style");` + "\n" +
		`randomFontStyleSheet.innerText = ".Japanese {font-family: \"FontX\";}";` + "\n" +
		"qa.appendChild(randomFontStyleSheet);\n" +
		"</script>"

	assert.Equal(t, want, got)
}

func TestTransformer_Choose(t *testing.T) {
	t.Parallel()

	src := staticSource(map[string][]string{
		"Japanese":           {"A", "B", "C", "D"},
		"Korean":             {"K"},
		"Simplified Chinese": {"S1", "S2"},
	})
	src.Enabled.Set("Korean", "K", false)

	tcs := map[string]struct {
		text string
		want []string
	}{
		"none named": {
			text: "plain text",
		},
		"disabled falls back to default": {
			text: "Korean",
			want: []string{"Korean"},
		},
		"sorted by name": {
			text: "SimplifiedChinese Japanese Korean",
			want: []string{"Japanese", "Korean", "Simplified Chinese"},
		},
		"name with space needs token": {
			text: "Simplified Chinese",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			choices, err := transform.New(src, transform.WithSeed(1)).Choose(context.Background(), tc.text)
			require.NoError(t, err)

			var got []string
			for _, c := range choices {
				got = append(got, c.WritingSystem)
				if c.WritingSystem == "Korean" {
					assert.Equal(t, "Fallback Sans", c.Font)
				}
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransformer_Seeded(t *testing.T) {
	t.Parallel()

	src := staticSource(map[string][]string{"Japanese": {"A", "B", "C", "D", "E", "F"}})

	first, err := transform.New(src, transform.WithSeed(42)).Question(context.Background(), "Japanese")
	require.NoError(t, err)

	second, err := transform.New(src, transform.WithSeed(42)).Question(context.Background(), "Japanese")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTransformer_SanitizesFonts(t *testing.T) {
	t.Parallel()

	src := staticSource(map[string][]string{
		"Latin": {`Evil<script>alert(1)</script>"Font`},
	})

	choices, err := transform.New(src).Choose(context.Background(), "Latin")
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, `Evil"Font`, choices[0].Font)

	got := transform.RenderQuestion("Latin", choices)
	assert.Contains(t, got, `var LatinChosenFont = "Evil\"Font";`)
	assert.Contains(t, got, `<rt>Evil&#34;Font</rt>`)
	assert.Contains(t, got, `.Latin {font-family: \"Evil\\\"Font\";}`)
	assert.NotContains(t, got, "alert")
}

func TestTransformer_Answer(t *testing.T) {
	t.Parallel()

	tr := transform.New(staticSource(nil))

	got, err := tr.Answer(context.Background(), "Korean and Japanese")
	require.NoError(t, err)
	assert.Equal(t, "Korean and Japanese"+
		"<script>qa.append(JapaneseTooltip);</script>"+
		"<script>qa.append(KoreanTooltip);</script>"+
		"<script>qa.appendChild(randomFontStyleSheet);</script>", got)

	got, err = tr.Answer(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "nothing<script>qa.appendChild(randomFontStyleSheet);</script>", got)
}

type failingSource struct{}

var errCatalog = errors.New("catalog unavailable")

func (failingSource) WritingSystems() []string { return []string{"Japanese"} }

func (failingSource) EnabledFonts(context.Context, string) ([]string, error) {
	return nil, errCatalog
}

func (failingSource) DefaultFamily(context.Context) (string, error) { return "", errCatalog }

func TestTransformer_Error(t *testing.T) {
	t.Parallel()

	_, err := transform.New(failingSource{}).Question(context.Background(), "Japanese")
	require.ErrorIs(t, err, errCatalog)

	got, err := transform.New(failingSource{}).Question(context.Background(), "Korean")
	require.NoError(t, err)
	assert.Contains(t, got, `innerText = "";`)
}
