package app

import "github.com/spf13/pflag"

// RegisterIndexFlags registers the flags shared by every mode that
// touches the review database and the index.
func RegisterIndexFlags(flags *pflag.FlagSet) {
	flags.StringP("database", "d", "", "Path to the review SQLite database")
	flags.StringP("base-dir", "b", "", "Directory for index state (index, watermark, lock)")
	flags.StringSliceP("statuses", "s", nil, "Eligible review request statuses (comma-separated)")
	flags.IntP("max-results", "m", 0, "Maximum search results per query")
}

// RegisterServeFlags registers the flags for the serving mode.
func RegisterServeFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
}
