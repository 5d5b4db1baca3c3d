package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sawpanic/techrun/internal/config"
)

// datasetFlags are shared by every command that executes the pipeline
func datasetFlags(env config.Env) *pflag.FlagSet {
	fs := pflag.NewFlagSet("dataset", pflag.ContinueOnError)
	fs.String("data", env.DataDir, "Data directory holding companies.yaml, bottlenecks.yaml and graph.yaml")
	fs.String("config", env.ConfigPath, "Pipeline configuration YAML (defaults when empty)")
	fs.Int("workers", env.Workers, "Concurrent per-company scoring workers")
	return fs
}

// storageFlags select where runs are stored and cached
func storageFlags(env config.Env) *pflag.FlagSet {
	fs := pflag.NewFlagSet("storage", pflag.ContinueOnError)
	fs.String("database-url", env.DatabaseURL, "PostgreSQL DSN (in-memory store when empty)")
	fs.String("redis-addr", env.RedisAddr, "Redis address for the run cache (in-memory when empty)")
	fs.Bool("migrate", true, "Create database tables if missing")
	return fs
}

type datasetOptions struct {
	DataDir    string
	ConfigPath string
	Workers    int
}

func readDatasetFlags(cmd *cobra.Command) datasetOptions {
	fs := cmd.Flags()
	dataDir, _ := fs.GetString("data")
	configPath, _ := fs.GetString("config")
	workers, _ := fs.GetInt("workers")
	return datasetOptions{DataDir: dataDir, ConfigPath: configPath, Workers: workers}
}

type storageOptions struct {
	DatabaseURL string
	RedisAddr   string
	Migrate     bool
}

func readStorageFlags(cmd *cobra.Command) storageOptions {
	fs := cmd.Flags()
	dsn, _ := fs.GetString("database-url")
	redisAddr, _ := fs.GetString("redis-addr")
	migrate, _ := fs.GetBool("migrate")
	return storageOptions{DatabaseURL: dsn, RedisAddr: redisAddr, Migrate: migrate}
}
