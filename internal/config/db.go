package config

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // file path, sqlite engine only
	GormEngine string // mysql, postgres or sqlite
}
