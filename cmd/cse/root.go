package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rbaliyan/cse"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Environment variables read by the CLI.
const (
	envModulus  = "CSE_MODULUS"
	envExponent = "CSE_EXPONENT"
	envKeyID    = "CSE_KEY_ID"
	envLogLevel = "CSE_LOG_LEVEL"
)

const envKeyDefaultID = "env"

type config struct {
	logLevel  string
	logFormat string
	output    string
	envFile   string
	keyFile   string
}

func newRootCmd() *cobra.Command {
	cfg := &config{}

	root := &cobra.Command{
		Use:          "cse",
		Short:        "Client-side card encryption",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(cfg.envFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				if lvl := os.Getenv(envLogLevel); lvl != "" {
					cfg.logLevel = lvl
				}
			}
			if cfg.output != "text" && cfg.output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", cfg.output)
			}
			return setupLogging(cmd.ErrOrStderr(), cfg.logLevel, cfg.logFormat)
		},
	}

	root.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "warn", "Log level: debug, info, warn, error (or set "+envLogLevel+")")
	root.PersistentFlags().StringVar(&cfg.logFormat, "log-format", "text", "Log format: text, json")
	root.PersistentFlags().StringVar(&cfg.output, "output", "text", "Output format: text, json")
	root.PersistentFlags().StringVar(&cfg.envFile, "env-file", "", "Load settings from this file instead of ./.env")
	root.PersistentFlags().StringVar(&cfg.keyFile, "key-file", "", "PEM public key to encrypt under instead of the gateway key")

	root.AddCommand(predictCmd(cfg))
	root.AddCommand(validateCmd(cfg))
	root.AddCommand(encryptCmd(cfg))
	root.AddCommand(keyCmd(cfg))
	root.AddCommand(versionCmd())

	return root
}

// loadEnv loads an explicitly named env file, or ./.env when it exists.
// Variables already set in the environment win.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func setupLogging(w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	switch format {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("--log-format must be text or json, got %q", format)
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	return nil
}

// loadProvider resolves the encryption key: --key-file first, then the
// CSE_MODULUS/CSE_EXPONENT pair, then the embedded gateway key.
func loadProvider(cfg *config) (*cse.StaticKeyProvider, error) {
	if cfg.keyFile != "" {
		data, err := os.ReadFile(cfg.keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
		raw, err := cse.RawKeyFromPEM(data)
		if err != nil {
			return nil, fmt.Errorf("key file %s: %w", cfg.keyFile, err)
		}
		log.WithField("file", cfg.keyFile).Info("using key from file")
		return cse.NewStaticKeyProvider(raw, filepath.Base(cfg.keyFile))
	}

	modulus, exponent := os.Getenv(envModulus), os.Getenv(envExponent)
	switch {
	case modulus != "" && exponent != "":
		raw, err := cse.RawKeyFromBase64(modulus, exponent)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", envModulus, envExponent, err)
		}
		id := os.Getenv(envKeyID)
		if id == "" {
			id = envKeyDefaultID
		}
		log.WithField("key_id", id).Info("using key from environment")
		return cse.NewStaticKeyProvider(raw, id)
	case modulus != "" || exponent != "":
		return nil, fmt.Errorf("%s and %s must be set together", envModulus, envExponent)
	default:
		log.Debug("using embedded gateway key")
		return cse.GatewayProvider()
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
