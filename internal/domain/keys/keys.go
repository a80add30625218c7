// Package keys holds the Viper/flag key names used across batchtube.
package keys

// Download flags.
const (
	MaxConcurrent string = "max-concurrent"
	OutputDir     string = "output-dir"
	OutputTmpl    string = "output-template"
	Format        string = "format"
	MaxFilesize   string = "max-filesize"
	Retries       string = "dl-retries"
	BatchFile     string = "batch-file"
	CookieSource  string = "cookies-from-browser"
	CookieFile    string = "cookie-file"
	ExtraArgs     string = "extra-ytdlp-args"
)

// History flags.
const (
	HistoryLimit string = "limit"
	HistorySince string = "since"
	OlderThan    string = "older-than"
)

// Duplicate scan flags.
const (
	SimilarNames     string = "similar"
	SimilarThreshold string = "similar-threshold"
)

// Grab flags.
const (
	GrabDownload string = "download"
)

// Program flags.
const (
	ConfigFile string = "config-file"
	DebugLevel string = "debug"
	LogToFile  string = "log-file"
)
