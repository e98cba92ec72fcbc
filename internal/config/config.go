package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	MySQL     MySQLConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
}

var (
	instance *Config
	once     sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MySQLConfig struct {
	DSN string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	// Addr empty disables the online-set mirror.
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	// Brokers empty disables event publishing.
	Brokers []string
	Topic   string
}

type StorageConfig struct {
	// Driver is "disk" or "minio".
	Driver    string
	UploadDir string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type WebSocketConfig struct {
	// PingInterval is how often a liveness probe is sent per connection.
	// PongWait bounds how long the acknowledgment may take before the
	// connection is declared dead.
	PingInterval time.Duration
	PongWait     time.Duration
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("DM_HOST", "")
		viper.SetDefault("DM_PORT", "4040")
		viper.SetDefault("DM_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("DM_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("DM_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("DM_JWT_SECRET", "secret")
		viper.SetDefault("DM_JWT_EXPIRE", "24h")
		viper.SetDefault("DM_PING_INTERVAL", 5*time.Second)
		viper.SetDefault("DM_PONG_WAIT", 1*time.Second)
		viper.SetDefault("MYSQL_DSN", "root:password@tcp(localhost:3306)/dm?charset=utf8mb4&parseTime=True&loc=Local")
		viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
		viper.SetDefault("MONGO_DB", "dm")
		viper.SetDefault("REDIS_ADDR", "")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("KAFKA_BROKERS", "")
		viper.SetDefault("KAFKA_TOPIC", "dm.message.created")
		viper.SetDefault("STORAGE_DRIVER", "disk")
		viper.SetDefault("UPLOAD_DIR", "uploads")
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "")
		viper.SetDefault("MINIO_SECRET_KEY", "")
		viper.SetDefault("MINIO_BUCKET", "dm-attachments")
		viper.AutomaticEnv()

		var brokers []string
		if viper.GetString("KAFKA_BROKERS") != "" {
			brokers = viper.GetStringSlice("KAFKA_BROKERS")
		}

		instance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("DM_HOST"),
				Port:         viper.GetString("DM_PORT"),
				ReadTimeout:  viper.GetDuration("DM_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("DM_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("DM_IDLE_TIMEOUT"),
			},
			MySQL: MySQLConfig{
				DSN: viper.GetString("MYSQL_DSN"),
			},
			Mongo: MongoConfig{
				URI:      viper.GetString("MONGO_URI"),
				Database: viper.GetString("MONGO_DB"),
			},
			Redis: RedisConfig{
				Addr:         viper.GetString("REDIS_ADDR"),
				Password:     viper.GetString("REDIS_PASSWORD"),
				DB:           viper.GetInt("REDIS_DB"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			Kafka: KafkaConfig{
				Brokers: brokers,
				Topic:   viper.GetString("KAFKA_TOPIC"),
			},
			Storage: StorageConfig{
				Driver:    viper.GetString("STORAGE_DRIVER"),
				UploadDir: viper.GetString("UPLOAD_DIR"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("DM_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("DM_JWT_EXPIRE"),
			},
			WebSocket: WebSocketConfig{
				PingInterval: viper.GetDuration("DM_PING_INTERVAL"),
				PongWait:     viper.GetDuration("DM_PONG_WAIT"),
			},
		}
	})

	return instance, nil
}
