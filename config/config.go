package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	JWTTTLHours int

	// Geocoder settings. Email is sent in the User-Agent per OSM policy.
	GeocoderBaseURL string
	GeocoderEmail   string

	// Timezone controls which calendar day counts as "today" for event
	// date matching. Defaults to UTC.
	Timezone string

	UploadDir     string
	PublicBaseURL string

	// RedisAddr is optional; when empty the rate limiter falls back to an
	// in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads environment variables and returns a Config object.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	ttl, _ := strconv.Atoi(os.Getenv("JWT_TTL_HOURS"))
	if ttl <= 0 {
		ttl = 2
	}
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	cfg := &Config{
		Port: os.Getenv("PORT"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: ttl,

		GeocoderBaseURL: os.Getenv("GEOCODER_BASE_URL"),
		GeocoderEmail:   os.Getenv("GEOCODER_EMAIL"),

		Timezone: os.Getenv("TIMEZONE"),

		UploadDir:     os.Getenv("UPLOAD_DIR"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GeocoderBaseURL == "" {
		cfg.GeocoderBaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	return cfg
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("invalid TIMEZONE %q, falling back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// TokenTTL is how long issued bearer tokens stay valid.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}
