package env

import "os"

// Get reads an environment variable, falling back when it is unset or empty.
// Empty values count as unset because an exported-but-blank variable is
// almost always a deployment mistake rather than an intentional override.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
