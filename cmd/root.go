package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "recruiter"
)

type Config struct {
	Database  string         `mapstructure:"database"`
	Workspace string         `mapstructure:"workspace"`
	Userbot   *UserbotConfig `mapstructure:"userbot"`
	HHChat    *HHChatConfig  `mapstructure:"hh-chat"`
	AI        *AIConfig      `mapstructure:"ai"`
	Batch     *BatchConfig   `mapstructure:"batch"`
	Events    *EventsConfig  `mapstructure:"events"`
	Scraper   *ScraperConfig `mapstructure:"scraper"`
}

type UserbotConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type HHChatConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type EventsConfig struct {
	AMQPURL string `mapstructure:"amqp-url"`
}

type ScraperConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruiter screens candidate responses with AI and runs short messenger interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("hh-chat.token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("userbot.token-file", "USERBOT_TOKEN_FILE"); err != nil {
		log.Fatalf("binding USERBOT_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("scraper.token-file", "SCRAPER_TOKEN_FILE"); err != nil {
		log.Fatalf("binding SCRAPER_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruiter.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
