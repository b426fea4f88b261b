package showgate

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
