package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/config"
	"github.com/macropower/cardfont/pkg/theme"
)

// ColorSchemeFunc reads the theme from the default configuration file,
// falling back to the default theme.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cl, err := config.NewLoaderFromFile(configs.GetPath(), configs.New, configs.DefaultValidator,
		config.WithThemeFromData(),
	)
	if err != nil {
		return ThemeColorScheme(theme.Default, c)
	}

	return ThemeColorScheme(cl.GetTheme(), c)
}

func ThemeColorScheme(t *theme.Theme, c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           t.GenericTextStyle.GetForeground(),
		Title:          t.LogoStyle.GetBackground(),
		Codeblock:      c(charmtone.Salt, lipgloss.Color("#2F2E36")),
		Program:        t.SelectedStyle.GetForeground(),
		Command:        t.SelectedStyle.GetForeground(),
		DimmedArgument: t.SubtleStyle.GetForeground(),
		Comment:        t.SubtleStyle.GetForeground(),
		Flag:           t.SelectedStyle.GetForeground(),
		Argument:       t.GenericTextStyle.GetForeground(),
		Description:    t.GenericTextStyle.GetForeground(),
		FlagDefault:    t.SelectedSubtleStyle.GetForeground(),
		QuotedString:   t.MatchStyle.GetForeground(),
		ErrorHeader: [2]color.Color{
			t.LogoStyle.GetForeground(),
			t.ErrorStyle.GetForeground(),
		},
	}
}
