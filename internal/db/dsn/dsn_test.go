package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noterelay/noterelay/internal/config"
)

func TestCreate(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.Config
		expected string
	}{
		{
			name: "mysql",
			cfg: config.Config{DB: config.DB{
				GormEngine: "mysql",
				User:       "relay",
				Password:   "pw",
				Host:       "db.local",
				Port:       3306,
				Name:       "noterelay",
				Extras:     "parseTime=true",
			}},
			expected: "relay:pw@tcp(db.local:3306)/noterelay?parseTime=true",
		},
		{
			name: "postgres",
			cfg: config.Config{DB: config.DB{
				GormEngine: "postgres",
				User:       "relay",
				Password:   "pw",
				Host:       "db.local",
				Port:       5432,
				Name:       "noterelay",
				Extras:     "sslmode=disable",
			}},
			expected: "host=db.local user=relay password=pw dbname=noterelay port=5432 sslmode=disable",
		},
		{
			name: "sqlite with path",
			cfg: config.Config{DB: config.DB{
				GormEngine: "sqlite",
				Path:       "/var/lib/noterelay/data.db",
			}},
			expected: "/var/lib/noterelay/data.db",
		},
		{
			name: "sqlite default path",
			cfg: config.Config{DB: config.DB{
				GormEngine: "sqlite",
			}},
			expected: "noterelay.db",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Create(&tc.cfg))
		})
	}
}
