package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv подтягивает .env из рабочей директории, если он есть.
// Переменные окружения процесса имеют приоритет над файлом.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("config: .env not loaded (%v), using process environment", err)
		return
	}
	log.Println("config: .env loaded")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return i
		}
		log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
		log.Printf("config: %s=%q is not a boolean, using %t", key, v, def)
	}
	return def
}
