package config

import "os"

func IsDebug() bool {
	return os.Getenv("NIRNAY_DEBUG") == "1"
}
