package styles

// DarkTheme is the default palette.
var DarkTheme = Theme{
	Name: "dark",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Status: StatusColors{
		Success: "41",
		Warning: "214",
		Error:   "203",
		Running: "220",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		SelectedRow:  "75",
		Banner:       "58",
		BannerAccent: "229",
	},
}

// LightTheme suits light terminal backgrounds.
var LightTheme = Theme{
	Name: "light",
	Base: BaseColors{
		Background: "255",
		Foreground: "235",
		Muted:      "243",
		Accent:     "26",
		Border:     "250",
	},
	Status: StatusColors{
		Success: "28",
		Warning: "130",
		Error:   "124",
		Running: "136",
	},
	Chrome: ChromeColors{
		Header:       "25",
		Footer:       "60",
		SelectedRow:  "26",
		Banner:       "187",
		BannerAccent: "58",
	},
}

// HighContrastTheme maximizes legibility on poor terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "0",
		Foreground: "15",
		Muted:      "7",
		Accent:     "14",
		Border:     "8",
	},
	Status: StatusColors{
		Success: "10",
		Warning: "11",
		Error:   "9",
		Running: "11",
	},
	Chrome: ChromeColors{
		Header:       "14",
		Footer:       "7",
		SelectedRow:  "14",
		Banner:       "3",
		BannerAccent: "0",
	},
}
