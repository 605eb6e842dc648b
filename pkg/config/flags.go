package config

type Flags struct {
	ProjectDir   string
	BuildFile    string
	Workdir      string
	Output       string
	CacheMode    string
	CacheID      string
	Engine       string
	EnvFile      string
	Tag          string
	Delete       bool
	DryRun       bool
	Labels       bool
	NoColor      bool
	PrintVersion bool
	Push         bool
	Unique       bool
	Verbose      bool
}
