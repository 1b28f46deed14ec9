package config

import (
	"strconv"
	"time"

	"review-eval-app/internal/helpers"
)

type AppConfig struct {
	Port        string          `json:"port"`
	DataDir     string          `json:"data_dir"`
	ResultsPath string          `json:"results_path"`
	Collections [2]Collection   `json:"collections"`
	PDF         PDFSourceConfig `json:"pdf"`
	Session     SessionConfig   `json:"session"`
}

// Collection is one of the two fixed paper sources. Each has its own pair of
// review JSON files and its own PDF directory.
type Collection struct {
	Name    string `json:"name"`
	JSONDir string `json:"json_dir"`
	PDFDir  string `json:"pdf_dir"`
}

type PDFSourceConfig struct {
	Source    string `json:"source"` // "local" or "s3"
	S3Bucket  string `json:"s3_bucket"`
	AWSRegion string `json:"aws_region"`
}

type SessionConfig struct {
	TTL           time.Duration `json:"ttl"`
	SweepInterval time.Duration `json:"sweep_interval"`
}

func Load() AppConfig {
	cfg := AppConfig{
		Port:        helpers.GetEnvOrDefault("PORT", "8080"),
		DataDir:     helpers.GetEnvOrDefault("DATA_DIR", "data"),
		ResultsPath: helpers.GetEnvOrDefault("RESULTS_CSV_PATH", "results.csv"),
		Collections: [2]Collection{
			{
				Name:    "COLM",
				JSONDir: helpers.GetEnvOrDefault("COLM_JSON_DIR", "data_colm"),
				PDFDir:  helpers.GetEnvOrDefault("COLM_PDF_DIR", "pdfs_colm"),
			},
			{
				Name:    "NeurIPS",
				JSONDir: helpers.GetEnvOrDefault("NEURIPS_JSON_DIR", "data_neurips"),
				PDFDir:  helpers.GetEnvOrDefault("NEURIPS_PDF_DIR", "pdfs_neurips"),
			},
		},
		PDF: PDFSourceConfig{
			Source: helpers.GetEnvOrDefault("PDF_SOURCE", "local"),
		},
		Session: SessionConfig{
			TTL:           envMinutes("SESSION_TTL_MINUTES", 240),
			SweepInterval: envMinutes("SESSION_SWEEP_MINUTES", 10),
		},
	}

	if cfg.PDF.Source == "s3" {
		cfg.PDF.S3Bucket = helpers.GetEnvVariable("AWS_BUCKET")
		cfg.PDF.AWSRegion = helpers.GetEnvVariable("AWS_REGION")
	}

	return cfg
}

func envMinutes(key string, fallback int) time.Duration {
	raw := helpers.GetEnvOrDefault(key, strconv.Itoa(fallback))
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}
