// Parsing helpers for environment-derived configuration: never fatal,
// always falls back to the supplied default with a logged warning.
package cos

import (
	"os"
	"strconv"

	"github.com/fileflow/relay/internal/nlog"
)

func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvUint64OrDefault(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		nlog.Warningf("invalid %s=%q, falling back to default %d: %v", key, v, def, err)
		return def
	}
	return n
}

func GetEnvUint32OrDefault(key string, def uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		nlog.Warningf("invalid %s=%q, falling back to default %d: %v", key, v, def, err)
		return def
	}
	return uint32(n)
}
