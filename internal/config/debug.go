package config

import "os"

func IsDebug() bool {
	return os.Getenv("CERAMICS_DEBUG") == "1"
}
