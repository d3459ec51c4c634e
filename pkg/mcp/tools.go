package mcp

import "github.com/mark3labs/mcp-go/mcp"

func generateCSSTool() mcp.Tool {
	return mcp.NewTool("generate_css",
		mcp.WithDescription("Compile utility classes to CSS. Unknown classes are skipped and listed."),
		mcp.WithArray("classes", mcp.Required(), mcp.WithStringItems(),
			mcp.Description("Class strings; each entry may hold several space-separated classes")),
		mcp.WithBoolean("preflight", mcp.DefaultBool(false),
			mcp.Description("Prepend the base reset styles")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func parseClassTool() mcp.Tool {
	return mcp.NewTool("parse_class",
		mcp.WithDescription("Parse one class into variants, utility, modifiers and the CSS it resolves to"),
		mcp.WithString("class", mcp.Required(), mcp.Description("A single class, e.g. sm:hover:!bg-red-500/50")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func themeCSSTool() mcp.Tool {
	return mcp.NewTool("theme_css",
		mcp.WithDescription("Theme colour custom properties with the dark scheme scoped by strategy"),
		mcp.WithString("strategy", mcp.Enum("class", "media", "selector", "auto"),
			mcp.Description("Dark mode strategy; defaults to the project setting")),
		mcp.WithString("selector", mcp.Description("Dark selector for the selector strategy")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func analyzeUsageTool() mcp.Tool {
	return mcp.NewTool("analyze_usage",
		mcp.WithDescription("Report how many registered rules the given classes use and what tree-shaking would drop"),
		mcp.WithArray("classes", mcp.Required(), mcp.WithStringItems(),
			mcp.Description("Classes found in the project content")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func extractClassesTool() mcp.Tool {
	return mcp.NewTool("extract_classes",
		mcp.WithDescription("Extract candidate classes from source code"),
		mcp.WithString("code", mcp.Required(), mcp.Description("File content")),
		mcp.WithString("filename", mcp.DefaultString("input.tsx"),
			mcp.Description("Name used to pick the language, e.g. page.tsx or index.html")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func engineStatsTool() mcp.Tool {
	return mcp.NewTool("engine_stats",
		mcp.WithDescription("Resolution cache counters and registry size"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
