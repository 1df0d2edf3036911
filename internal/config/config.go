package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration

	GatewayURL    string
	GatewaySecret string
	PixKey        string

	ViaCEPURL string

	CartSaveDelay time.Duration

	Port string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env not loaded")
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		GatewayURL:     getEnvOrDefault("PAYMENT_GATEWAY_URL", "https://api.stripe.com"),
		GatewaySecret:  getEnvOrDefault("PAYMENT_GATEWAY_SECRET", ""),
		PixKey:         getEnvOrDefault("PIX_KEY", ""),
		ViaCEPURL:      getEnvOrDefault("VIACEP_URL", "https://viacep.com.br"),
		CartSaveDelay:  getDurationEnv("CART_SAVE_DELAY_MS", 1000, time.Millisecond),
		Port:           getEnvOrDefault("PORT", "8080"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
