package domain

// ThemeTokens are the presentation classes the UI applies for a given gender.
type ThemeTokens struct {
	TextMain     string `json:"textMain"`
	TextSub      string `json:"textSub"`
	TextAccent   string `json:"textAccent"`
	TextStrong   string `json:"textStrong"`
	BgMain       string `json:"bgMain"`
	BgCard       string `json:"bgCard"`
	BgCardAccent string `json:"bgCardAccent"`
	BgBadge      string `json:"bgBadge"`
	BgBadgeDark  string `json:"bgBadgeDark"`
	BorderMain   string `json:"borderMain"`
	BorderAccent string `json:"borderAccent"`
	BorderStrong string `json:"borderStrong"`
	IconBg       string `json:"iconBg"`
	IconBgAlt    string `json:"iconBgAlt"`
	ShadowColor  string `json:"shadowColor"`
	Loader       string `json:"loader"`
	ErrorBg      string `json:"errorBg"`
	ProgressBar  string `json:"progressBar"`
	HoverBorder  string `json:"hoverBorder"`
	BtnHover     string `json:"btnHover"`
}

// Theme returns the token set for g. Anything other than GenderBoy gets the
// girl palette, which is also the default setting.
func Theme(g Gender) ThemeTokens {
	if g == GenderBoy {
		return ThemeTokens{
			TextMain:     "text-blue-950",
			TextSub:      "text-blue-800/70",
			TextAccent:   "text-blue-900",
			TextStrong:   "text-blue-600",
			BgMain:       "bg-slate-50",
			BgCard:       "bg-blue-50",
			BgCardAccent: "bg-sky-50",
			BgBadge:      "bg-sky-100",
			BgBadgeDark:  "bg-blue-100",
			BorderMain:   "border-blue-100",
			BorderAccent: "border-sky-100",
			BorderStrong: "border-blue-500",
			IconBg:       "bg-blue-100 text-blue-700",
			IconBgAlt:    "bg-sky-100 text-sky-700",
			ShadowColor:  "shadow-blue-200",
			Loader:       "border-blue-100 border-t-blue-500",
			ErrorBg:      "bg-blue-100 border-blue-200 text-blue-900",
			ProgressBar:  "bg-blue-500",
			HoverBorder:  "hover:border-sky-300",
			BtnHover:     "hover:border-sky-200",
		}
	}
	return ThemeTokens{
		TextMain:     "text-rose-950",
		TextSub:      "text-rose-800/70",
		TextAccent:   "text-rose-900",
		TextStrong:   "text-rose-600",
		BgMain:       "bg-white",
		BgCard:       "bg-rose-50",
		BgCardAccent: "bg-pink-50",
		BgBadge:      "bg-pink-100",
		BgBadgeDark:  "bg-rose-100",
		BorderMain:   "border-rose-100",
		BorderAccent: "border-pink-100",
		BorderStrong: "border-rose-500",
		IconBg:       "bg-rose-100 text-rose-700",
		IconBgAlt:    "bg-pink-100 text-pink-700",
		ShadowColor:  "shadow-rose-200",
		Loader:       "border-rose-100 border-t-rose-500",
		ErrorBg:      "bg-rose-100 border-rose-200 text-rose-900",
		ProgressBar:  "bg-rose-500",
		HoverBorder:  "hover:border-pink-300",
		BtnHover:     "hover:border-pink-200",
	}
}
