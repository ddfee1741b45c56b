package config

type Config struct {
	IsProd                bool   `env:"IS_PROD"`
	RedisConnectionString string `env:"REDIS_CONN,required"`

	Storage struct {
		Endpoint  string `env:"STORAGE_ENDPOINT,required"`
		Bucket    string `env:"STORAGE_BUCKET" envDefault:"school-assets"`
		Region    string `env:"STORAGE_REGION" envDefault:"auto"`
		AccessKey string `env:"STORAGE_ACCESS_KEY,required"`
		SecretKey string `env:"STORAGE_SECRET_KEY,required"`
	}
}
