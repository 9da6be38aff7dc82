package main

import (
	"flag"
	"os"
	"time"
)

type Config struct {
	endpoint string
	dsn      string

	kafkaBrokers       string
	notificationsTopic string

	documentsEndpoint string
	acquiringEndpoint string

	specialOrgINN string

	offerExpiryInterval time.Duration

	logLevel string
	env      string
}

func NewConfig() Config {
	var cfg Config

	flag.StringVar(&cfg.endpoint, "a", "localhost:8080", "address and port to run server")
	flag.StringVar(&cfg.dsn, "d", "", "data source name for database connection")
	flag.StringVar(&cfg.kafkaBrokers, "k", "", "comma-separated kafka brokers for notifications")
	flag.Parse()

	if address := os.Getenv("RUN_ADDRESS"); address != "" {
		cfg.endpoint = address
	}

	if d := os.Getenv("DATABASE_URI"); d != "" {
		cfg.dsn = d
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.kafkaBrokers = brokers
	}

	cfg.notificationsTopic = os.Getenv("NOTIFICATIONS_TOPIC")

	cfg.documentsEndpoint = os.Getenv("DOCUMENTS_ADDRESS")
	cfg.acquiringEndpoint = os.Getenv("ACQUIRING_ADDRESS")

	cfg.specialOrgINN = os.Getenv("SPECIAL_ORG_INN")

	cfg.offerExpiryInterval = 10 * time.Minute
	if interval := os.Getenv("OFFER_EXPIRY_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			cfg.offerExpiryInterval = parsed
		}
	}

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		cfg.logLevel = l
	} else {
		cfg.logLevel = "info"
	}

	if e := os.Getenv("ENV"); e != "" {
		cfg.env = e
	} else {
		cfg.env = "production"
	}

	return cfg
}
