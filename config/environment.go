package config

import (
	"os"
	"strings"
)

type Environment struct {
	Port           string
	RemoteDBURL    string
	LocalDBPath    string
	AIBaseURL      string
	AllowedOrigins []string
}

// LoadEnvironment reads service configuration from the environment. Every
// value has a local-development default; an empty RemoteDBURL means the
// service runs in local-only persistence mode.
func LoadEnvironment() Environment {
	env := Environment{
		Port:        os.Getenv("PORT"),
		RemoteDBURL: os.Getenv("DB_URL"),
		LocalDBPath: os.Getenv("LOCAL_DB_PATH"),
		AIBaseURL:   os.Getenv("AI_API_BASE"),
	}

	if env.Port == "" {
		env.Port = "8080" // fallback port for local development
	}
	if env.LocalDBPath == "" {
		env.LocalDBPath = "studydeck.db"
	}
	if env.AIBaseURL == "" {
		env.AIBaseURL = "http://localhost:3000/api"
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		env.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.AllowedOrigins = append(env.AllowedOrigins, o)
			}
		}
	}

	return env
}
