package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-boxblur/logging"
)

var (
	Version  = "UNKNOWN"
	Revision = "UNKNOWN"
)

var (
	// configFile is the path of the YAML config file.
	configFile string
	// c is the loaded config.
	c Config
)

// rootCommand only carries the shared flags.
var rootCommand = &cobra.Command{
	Use:           "boxblur",
	Short:         "Iterative box blur for image files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCommand.AddCommand(
		blurCommand(),
		batchCommand(),
		confCommand(),
		versionCommand(),
	)

	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")

	flags.Bool("dev", false, "development mode")
	bindPFlag(flags, "dev", "dev")
	flags.IntP("iterations", "i", 3, "number of row and column passes")
	bindPFlag(flags, "blur.iterations", "iterations")
	flags.IntP("radius", "r", 10, "blur radius in pixels")
	bindPFlag(flags, "blur.radius", "radius")
	flags.Int("scale", 1, "downscale ratio applied before blurring")
	bindPFlag(flags, "blur.scaleRatio", "scale")
	flags.Float32("sigma", 0, "approximate a gaussian blur with this standard deviation instead of using --radius")
	bindPFlag(flags, "blur.sigma", "sigma")
	flags.String("format", "", "output format (jpeg, png, webp, gif, bmp); empty keeps the input format")
	bindPFlag(flags, "output.format", "format")
	flags.Int("quality", 90, "JPEG and lossy WebP quality")
	bindPFlag(flags, "output.quality", "quality")
	flags.Bool("lossless", false, "encode WebP losslessly")
	bindPFlag(flags, "output.lossless", "lossless")
	flags.Int("concurrency", 1, "number of files processed at once by batch")
	bindPFlag(flags, "imaging.concurrency", "concurrency")
}

func initConfig() {
	if len(configFile) > 0 {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("BOXBLUR")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("failed to read config file: %v", err)
		}
	}
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatal(err)
	}
}

// Execute runs the command line.
func Execute() error {
	return rootCommand.Execute()
}

func getLogger() *zap.Logger {
	logger, err := logging.New(c.DevMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}

func bindPFlag(flags *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}
