package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguages      []string
	MaxFileSize       int64
	LogLevel          string
}

// LoadConfig reads settings from the environment with sensible defaults.
// OCR_LANGUAGES is a "+"-separated tesseract language list ("fra+eng").
func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("OCR_LANGUAGES", "fra+eng")
	v.SetDefault("MAX_FILE_SIZE", int64(32<<20))
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		TesseractDataPath: v.GetString("TESSDATA_PREFIX"),
		OCRLanguages:      strings.Split(v.GetString("OCR_LANGUAGES"), "+"),
		MaxFileSize:       v.GetInt64("MAX_FILE_SIZE"),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}
}
