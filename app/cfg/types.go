package cfg

type Cfg struct {
	// Storage configuration
	DBPath   string
	SeedFile string

	// Application configuration
	Port         string
	BaseUrl      string
	APIAccessKey string
	FeedLimit    int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
