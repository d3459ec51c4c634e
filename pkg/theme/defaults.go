package theme

import "strconv"

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		Colors:  defaultColors(),
		Spacing: defaultSpacing(),
		Sizing: Scale{
			"auto": "auto", "full": "100%", "screen": "100vw", "min": "min-content",
			"max": "max-content", "fit": "fit-content", "px": "1px",
			"xs": "20rem", "sm": "24rem", "md": "28rem", "lg": "32rem", "xl": "36rem",
			"2xl": "42rem", "3xl": "48rem", "4xl": "56rem", "5xl": "64rem", "6xl": "72rem", "7xl": "80rem",
		},
		FontSize: Scale{
			"xs": "0.75rem", "sm": "0.875rem", "base": "1rem", "lg": "1.125rem", "xl": "1.25rem",
			"2xl": "1.5rem", "3xl": "1.875rem", "4xl": "2.25rem", "5xl": "3rem", "6xl": "3.75rem",
			"7xl": "4.5rem", "8xl": "6rem", "9xl": "8rem",
		},
		FontWeight: Scale{
			"thin": "100", "extralight": "200", "light": "300", "normal": "400", "medium": "500",
			"semibold": "600", "bold": "700", "extrabold": "800", "black": "900",
		},
		FontFamily: Scale{
			"sans": `ui-sans-serif, system-ui, sans-serif`,
			"serif": `ui-serif, Georgia, Cambria, "Times New Roman", Times, serif`,
			"mono": `ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace`,
		},
		LineHeight: Scale{
			"none": "1", "tight": "1.25", "snug": "1.375", "normal": "1.5", "relaxed": "1.625", "loose": "2",
			"3": ".75rem", "4": "1rem", "5": "1.25rem", "6": "1.5rem", "7": "1.75rem", "8": "2rem", "9": "2.25rem", "10": "2.5rem",
		},
		LetterSpacing: Scale{
			"tighter": "-0.05em", "tight": "-0.025em", "normal": "0em", "wide": "0.025em", "wider": "0.05em", "widest": "0.1em",
		},
		Radius: Scale{
			"none": "0px", "sm": "0.125rem", DefaultKey: "0.25rem", "md": "0.375rem", "lg": "0.5rem",
			"xl": "0.75rem", "2xl": "1rem", "3xl": "1.5rem", "full": "9999px",
		},
		Shadow: Scale{
			"sm":       "0 1px 2px 0 rgb(0 0 0 / 0.05)",
			DefaultKey: "0 1px 3px 0 rgb(0 0 0 / 0.1), 0 1px 2px -1px rgb(0 0 0 / 0.1)",
			"md":       "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
			"lg":       "0 10px 15px -3px rgb(0 0 0 / 0.1), 0 4px 6px -4px rgb(0 0 0 / 0.1)",
			"xl":       "0 20px 25px -5px rgb(0 0 0 / 0.1), 0 8px 10px -6px rgb(0 0 0 / 0.1)",
			"2xl":      "0 25px 50px -12px rgb(0 0 0 / 0.25)",
			"inner":    "inset 0 2px 4px 0 rgb(0 0 0 / 0.05)",
			"none":     "none",
		},
		Duration: Scale{
			"0": "0s", "75": "75ms", "100": "100ms", "150": "150ms", "200": "200ms", "300": "300ms",
			"500": "500ms", "700": "700ms", "1000": "1000ms", DefaultKey: "150ms",
		},
		Easing: Scale{
			"linear": "linear", "in": "cubic-bezier(0.4, 0, 1, 1)", "out": "cubic-bezier(0, 0, 0.2, 1)",
			"in-out": "cubic-bezier(0.4, 0, 0.2, 1)", DefaultKey: "cubic-bezier(0.4, 0, 0.2, 1)",
		},
		ZIndex: Scale{
			"0": "0", "10": "10", "20": "20", "30": "30", "40": "40", "50": "50", "auto": "auto",
		},
		Opacity: defaultOpacity(),
		Breakpoints: Scale{
			"sm": "640px", "md": "768px", "lg": "1024px", "xl": "1280px", "2xl": "1536px",
		},
		Perspective: Scale{
			"dramatic": "100px", "near": "300px", "normal": "500px", "midrange": "800px", "distant": "1200px", "none": "none",
		},
		Blur: Scale{
			"none": "0", "sm": "4px", DefaultKey: "8px", "md": "12px", "lg": "16px", "xl": "24px", "2xl": "40px", "3xl": "64px",
		},
	}
}

// defaultSpacing builds the 0.25rem-step spacing scale.
func defaultSpacing() Scale {
	s := Scale{"px": "1px", "0": "0px"}
	steps := []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 5, 6, 7, 8, 9, 10, 11, 12, 14, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60, 64, 72, 80, 96}
	for _, step := range steps {
		key := strconv.FormatFloat(step, 'f', -1, 64)
		s[key] = strconv.FormatFloat(step/4, 'f', -1, 64) + "rem"
	}
	return s
}

func defaultOpacity() Scale {
	s := make(Scale)
	for v := 0; v <= 100; v += 5 {
		key := strconv.Itoa(v)
		s[key] = strconv.FormatFloat(float64(v)/100, 'f', -1, 64)
	}
	return s
}
