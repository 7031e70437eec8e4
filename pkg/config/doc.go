// Package config loads configuration structs from environment variables.
//
// Struct fields are annotated with caarlos0/env tags. A `.env` file in the
// working directory is applied once per process through joho/godotenv
// (missing files are fine; real environment variables win). Each struct type
// is parsed once and cached:
//
//	type Config struct {
//		StoreID string `env:"ESHTAREK_STORE_ID"`
//		APIURL  string `env:"ESHTAREK_API_URL" envDefault:"https://api.eshtarek.com"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Nested structs are parsed too, so an application config can embed the
// config structs of the packages it wires together. ResetCache exists for
// tests.
package config
