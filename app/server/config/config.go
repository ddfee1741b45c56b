package config

type Config struct {
	System struct {
		IsProd                bool   `env:"IS_PROD"`                   // production mode switch
		Listen                string `env:"LISTEN" envDefault:":1323"` // listen address
		DBConnectionString    string `env:"DB_CONN,required"`          // Postgres connection string
		RedisConnectionString string `env:"REDIS_CONN,required"`       // Redis connection string
	}
	Security struct {
		SignatureSecretKey string `env:"SIGNATURE_SECRET_KEY,required"` // JWT signing key, rotating it invalidates live sessions
	}
	Storage struct {
		Endpoint  string `env:"STORAGE_ENDPOINT,required"` // storage gateway base URL, no trailing slash
		Bucket    string `env:"STORAGE_BUCKET" envDefault:"school-assets"`
		Region    string `env:"STORAGE_REGION" envDefault:"auto"`
		AccessKey string `env:"STORAGE_ACCESS_KEY,required"` // service credential for the write API
		SecretKey string `env:"STORAGE_SECRET_KEY,required"`
		SignReads bool   `env:"STORAGE_SIGN_READS"` // serve school-detail assets through signed URLs
	}
	Seed struct {
		LoginID  string `env:"SEED_LOGIN_ID" envDefault:"admin"` // bootstrap account, created when the users table is empty
		Password string `env:"SEED_PASSWORD" envDefault:"admin1234"`
		Name     string `env:"SEED_NAME" envDefault:"Administrator"`
	}
}
