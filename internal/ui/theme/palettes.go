package theme

// Dracula, https://draculatheme.com/contribute
var Dracula = Palette{
	PrimaryColor:             c("#7e57c2", "#bd93f9"),
	SecondaryColor:           c("#0097a7", "#8be9fd"),
	AccentColor:              c("#f9a825", "#f1fa8c"),
	ErrorColor:               c("#d32f2f", "#ff5555"),
	WarningColor:             c("#ef6c00", "#ffb86c"),
	SuccessColor:             c("#388e3c", "#50fa7b"),
	TextColor:                c("#282a36", "#f8f8f2"),
	TextMutedColor:           c("#6272a4", "#6272a4"),
	BackgroundColor:          c("#f8f8f2", "#282a36"),
	BackgroundSecondaryColor: c("#e0e0e0", "#44475a"),
	BorderNormalColor:        c("#bdbdbd", "#44475a"),
	BorderFocusedColor:       c("#7e57c2", "#bd93f9"),
}

// Nord, https://www.nordtheme.com/docs/colors-and-palettes
var Nord = Palette{
	PrimaryColor:             c("#5e81ac", "#88c0d0"),
	SecondaryColor:           c("#81a1c1", "#81a1c1"),
	AccentColor:              c("#d08770", "#ebcb8b"),
	ErrorColor:               c("#bf616a", "#bf616a"),
	WarningColor:             c("#d08770", "#d08770"),
	SuccessColor:             c("#a3be8c", "#a3be8c"),
	TextColor:                c("#2e3440", "#eceff4"),
	TextMutedColor:           c("#4c566a", "#d8dee9"),
	BackgroundColor:          c("#eceff4", "#2e3440"),
	BackgroundSecondaryColor: c("#e5e9f0", "#3b4252"),
	BorderNormalColor:        c("#d8dee9", "#434c5e"),
	BorderFocusedColor:       c("#5e81ac", "#88c0d0"),
}

// Solarized, https://ethanschoonover.com/solarized/
var Solarized = Palette{
	PrimaryColor:             c("#268bd2", "#268bd2"),
	SecondaryColor:           c("#2aa198", "#2aa198"),
	AccentColor:              c("#b58900", "#b58900"),
	ErrorColor:               c("#dc322f", "#dc322f"),
	WarningColor:             c("#cb4b16", "#cb4b16"),
	SuccessColor:             c("#859900", "#859900"),
	TextColor:                c("#657b83", "#839496"),
	TextMutedColor:           c("#93a1a1", "#586e75"),
	BackgroundColor:          c("#fdf6e3", "#002b36"),
	BackgroundSecondaryColor: c("#eee8d5", "#073642"),
	BorderNormalColor:        c("#eee8d5", "#073642"),
	BorderFocusedColor:       c("#268bd2", "#268bd2"),
}

// Gruvbox, https://github.com/morhetz/gruvbox
var Gruvbox = Palette{
	PrimaryColor:             c("#076678", "#83a598"),
	SecondaryColor:           c("#8f3f71", "#d3869b"),
	AccentColor:              c("#b57614", "#fabd2f"),
	ErrorColor:               c("#9d0006", "#fb4934"),
	WarningColor:             c("#af3a03", "#fe8019"),
	SuccessColor:             c("#79740e", "#b8bb26"),
	TextColor:                c("#3c3836", "#ebdbb2"),
	TextMutedColor:           c("#7c6f64", "#a89984"),
	BackgroundColor:          c("#fbf1c7", "#282828"),
	BackgroundSecondaryColor: c("#ebdbb2", "#504945"),
	BorderNormalColor:        c("#bdae93", "#504945"),
	BorderFocusedColor:       c("#076678", "#83a598"),
}

// TokyoNight, https://github.com/folke/tokyonight.nvim
var TokyoNight = Palette{
	PrimaryColor:             c("#2e7de9", "#7aa2f7"),
	SecondaryColor:           c("#9854f1", "#bb9af7"),
	AccentColor:              c("#8c6c3e", "#e0af68"),
	ErrorColor:               c("#f52a65", "#f7768e"),
	WarningColor:             c("#b15c00", "#ff9e64"),
	SuccessColor:             c("#587539", "#9ece6a"),
	TextColor:                c("#3760bf", "#c0caf5"),
	TextMutedColor:           c("#848cb5", "#565f89"),
	BackgroundColor:          c("#e1e2e7", "#1a1b26"),
	BackgroundSecondaryColor: c("#c4c8da", "#292e42"),
	BorderNormalColor:        c("#c4c8da", "#3b4261"),
	BorderFocusedColor:       c("#2e7de9", "#7aa2f7"),
}

func init() {
	RegisterTheme("dracula", Dracula)
	RegisterTheme("gruvbox", Gruvbox)
	RegisterTheme("nord", Nord)
	RegisterTheme("solarized", Solarized)
	RegisterTheme("tokyonight", TokyoNight)
}
