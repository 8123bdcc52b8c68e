package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Emulator      EmulatorConfig
	Logs          LogsConfig
	Exec          ExecConfig
	Elasticsearch ElasticsearchConfig
	Kafka         KafkaConfig
	Snapshot      SnapshotConfig
}

type ServerConfig struct {
	Port string
}

type EmulatorConfig struct {
	ContainerName  string
	GatewayURL     string
	HealthSchedule string
}

type LogsConfig struct {
	Command      string
	Args         []string
	Timeout      time.Duration
	MaxBuffer    int
	DefaultLines int
}

type ExecConfig struct {
	Timeout      time.Duration
	AuthTokenEnv string
}

type ElasticsearchConfig struct {
	Enabled       bool
	Addresses     []string
	LogIndex      string
	BulkWorkers   int
	FlushBytes    int
	FlushInterval time.Duration
}

type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	LogTopic string
}

type SnapshotConfig struct {
	FilePath string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EMULATOR_CONTAINER_NAME", "localstack-main")
	viper.SetDefault("EMULATOR_GATEWAY_URL", "http://localhost:4566")
	viper.SetDefault("EMULATOR_HEALTH_SCHEDULE", "*/30 * * * * *") // Every 30 seconds
	viper.SetDefault("LOGS_COMMAND", "localstack")
	viper.SetDefault("LOGS_ARGS", "logs")
	viper.SetDefault("LOGS_TIMEOUT", "30s")
	viper.SetDefault("LOGS_MAX_BUFFER", 10485760) // 10MB
	viper.SetDefault("LOGS_DEFAULT_LINES", 500)
	viper.SetDefault("EXEC_TIMEOUT", "60s")
	viper.SetDefault("EXEC_AUTH_TOKEN_ENV", "LOCALSTACK_AUTH_TOKEN")
	viper.SetDefault("ELASTICSEARCH_ENABLED", false)
	viper.SetDefault("ELASTICSEARCH_ADDRESSES", "http://localhost:9200")
	viper.SetDefault("ELASTICSEARCH_LOG_INDEX", "emulatorlogs")
	viper.SetDefault("ELASTICSEARCH_BULK_WORKERS", 2)
	viper.SetDefault("ELASTICSEARCH_FLUSH_BYTES", 1048576) // 1MB
	viper.SetDefault("ELASTICSEARCH_FLUSH_INTERVAL", "5s")
	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_LOG_TOPIC", "emulator_log_entries")
	viper.SetDefault("SNAPSHOT_STATE_PATH", "./snapshot_state.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Server.Port = viper.GetString("SERVER_PORT")

	config.Emulator.ContainerName = viper.GetString("EMULATOR_CONTAINER_NAME")
	config.Emulator.GatewayURL = viper.GetString("EMULATOR_GATEWAY_URL")
	config.Emulator.HealthSchedule = viper.GetString("EMULATOR_HEALTH_SCHEDULE")

	config.Logs.Command = viper.GetString("LOGS_COMMAND")
	config.Logs.Args = strings.Fields(viper.GetString("LOGS_ARGS"))
	config.Logs.Timeout = viper.GetDuration("LOGS_TIMEOUT")
	config.Logs.MaxBuffer = viper.GetInt("LOGS_MAX_BUFFER")
	config.Logs.DefaultLines = viper.GetInt("LOGS_DEFAULT_LINES")

	config.Exec.Timeout = viper.GetDuration("EXEC_TIMEOUT")
	config.Exec.AuthTokenEnv = viper.GetString("EXEC_AUTH_TOKEN_ENV")

	config.Elasticsearch.Enabled = viper.GetBool("ELASTICSEARCH_ENABLED")
	config.Elasticsearch.Addresses = strings.Split(viper.GetString("ELASTICSEARCH_ADDRESSES"), ",")
	config.Elasticsearch.LogIndex = viper.GetString("ELASTICSEARCH_LOG_INDEX")
	config.Elasticsearch.BulkWorkers = viper.GetInt("ELASTICSEARCH_BULK_WORKERS")
	config.Elasticsearch.FlushBytes = viper.GetInt("ELASTICSEARCH_FLUSH_BYTES")
	config.Elasticsearch.FlushInterval = viper.GetDuration("ELASTICSEARCH_FLUSH_INTERVAL")

	config.Kafka.Enabled = viper.GetBool("KAFKA_ENABLED")
	config.Kafka.Brokers = strings.Split(viper.GetString("KAFKA_BROKERS"), ",")
	config.Kafka.LogTopic = viper.GetString("KAFKA_LOG_TOPIC")

	config.Snapshot.FilePath = viper.GetString("SNAPSHOT_STATE_PATH")

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
