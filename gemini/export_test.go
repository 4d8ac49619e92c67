package gemini

// Exported for testing.
var BuildConfig = buildConfig
