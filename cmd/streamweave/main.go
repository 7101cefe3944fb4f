package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/streamweave/streamweave/pkg/clients/kafka"
	"github.com/streamweave/streamweave/pkg/config"
	"github.com/streamweave/streamweave/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	v := viper.New()
	v.SetEnvPrefix("STREAMWEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "streamweave",
		Short: "StreamWeave - stream processing client configuration toolkit",
		Long: `StreamWeave resolves a single flat property file into the validated
configurations for the clients a stream processing application runs: the main
consumer, the restore consumer, the global consumer, the producer, and the
admin client.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("StreamWeave v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var configFile string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a streams property file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			fmt.Printf("OK: application.id=%s guarantee=%s\n",
				cfg.ApplicationIDValue(), cfg.Guarantee())
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "streams property file (.properties or .yaml)")
	root.AddCommand(validateCmd)

	var resolveConfigFile, role, clientID, groupID, output string
	var threadIdx int
	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the configuration for one client role",
		Long: `Resolve the per-client configuration from a streams property file.

Example:
  streamweave resolve --config streams.properties --role main-consumer --group-id my-app --client-id my-app-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, resolveConfigFile)
			if err != nil {
				return err
			}
			props, err := resolveRole(cfg, role, groupID, clientID, threadIdx)
			if err != nil {
				return err
			}
			return printProps(props, output)
		},
	}
	resolveCmd.Flags().StringVarP(&resolveConfigFile, "config", "c", "", "streams property file (.properties or .yaml)")
	resolveCmd.Flags().StringVarP(&role, "role", "r", "main-consumer",
		"client role: main-consumer, restore-consumer, global-consumer, producer, admin")
	resolveCmd.Flags().StringVar(&clientID, "client-id", "", "client id for the resolved configuration")
	resolveCmd.Flags().StringVar(&groupID, "group-id", "", "group id (main consumer only; defaults to application.id)")
	resolveCmd.Flags().IntVar(&threadIdx, "thread-idx", 0, "stream thread index (main consumer only)")
	resolveCmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json, yaml, properties")
	root.AddCommand(resolveCmd)

	var keysVerbose bool
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List the streams configuration keys",
		Run: func(cmd *cobra.Command, args []string) {
			def := config.StreamsSchema()
			names := def.Keys()
			sort.Strings(names)
			for _, name := range names {
				entry, _ := def.Entry(name)
				if keysVerbose {
					fmt.Printf("%-50s %-8s %s\n", name, entry.Type, entry.Doc)
				} else {
					fmt.Println(name)
				}
			}
		},
	}
	keysCmd.Flags().BoolVarP(&keysVerbose, "verbose", "v", false, "include type and documentation")
	root.AddCommand(keysCmd)

	var checkConfigFile string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve every role and build the transport configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, checkConfigFile)
			if err != nil {
				return err
			}
			return checkAllRoles(cfg)
		},
	}
	checkCmd.Flags().StringVarP(&checkConfigFile, "config", "c", "", "streams property file (.properties or .yaml)")
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		logger.Get().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the property file named by the flag, falling back to the
// STREAMWEAVE_CONFIG environment variable.
func loadConfig(v *viper.Viper, configFile string) (*config.StreamsConfig, error) {
	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile == "" {
		return nil, fmt.Errorf("no config file: pass --config or set STREAMWEAVE_CONFIG")
	}
	return config.LoadStreamsConfig(configFile)
}

func resolveRole(cfg *config.StreamsConfig, role, groupID, clientID string, threadIdx int) (map[string]interface{}, error) {
	if clientID == "" {
		clientID = cfg.ApplicationIDValue()
	}
	switch role {
	case "main-consumer":
		if groupID == "" {
			groupID = cfg.ApplicationIDValue()
		}
		return cfg.MainConsumerConfigs(groupID, clientID, threadIdx), nil
	case "restore-consumer":
		return cfg.RestoreConsumerConfigs(clientID), nil
	case "global-consumer":
		return cfg.GlobalConsumerConfigs(clientID), nil
	case "producer":
		return cfg.ProducerConfigs(clientID)
	case "admin":
		return cfg.AdminConfigs(clientID), nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func printProps(props map[string]interface{}, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(props, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(props)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "properties":
		keys := make([]string, 0, len(props))
		for key := range props {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s=%v\n", key, props[key])
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

// checkAllRoles resolves all five roles and runs each through the sarama
// builders, surfacing the first mapping error without touching the network.
func checkAllRoles(cfg *config.StreamsConfig) error {
	appID := cfg.ApplicationIDValue()

	main := cfg.MainConsumerConfigs(appID, appID+"-1", 0)
	if _, err := kafka.BuildConsumerConfig(main); err != nil {
		return fmt.Errorf("main consumer: %w", err)
	}
	if _, err := kafka.BuildConsumerConfig(cfg.RestoreConsumerConfigs(appID + "-1")); err != nil {
		return fmt.Errorf("restore consumer: %w", err)
	}
	if _, err := kafka.BuildConsumerConfig(cfg.GlobalConsumerConfigs(appID + "-1")); err != nil {
		return fmt.Errorf("global consumer: %w", err)
	}

	producerProps, err := cfg.ProducerConfigs(appID + "-1")
	if err != nil {
		return fmt.Errorf("producer: %w", err)
	}
	if _, err := kafka.BuildProducerConfig(producerProps); err != nil {
		return fmt.Errorf("producer: %w", err)
	}
	if _, err := kafka.BuildAdminConfig(cfg.AdminConfigs(appID + "-admin")); err != nil {
		return fmt.Errorf("admin: %w", err)
	}

	fmt.Println("all client configurations resolved")
	return nil
}
