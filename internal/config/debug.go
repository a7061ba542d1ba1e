package config

import "os"

func IsDebug() bool {
	return os.Getenv("MATGRAM_DEBUG") == "1"
}
