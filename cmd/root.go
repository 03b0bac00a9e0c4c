package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

var (
	cfgFile string

	// logger is configured from --log-level and --log-format before any command runs
	logger = logrus.New()

	// appFs is where input images are read and tiles are written
	appFs afero.Fs = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gridsplit [image|url]",
	Short: "Split an image into a grid of PNG tiles",
	Long: `gridsplit cuts an image into rows and columns and writes every cell as
its own PNG file. Dividers are evenly spaced unless explicit positions (in
percent of the image size) are given.

Tiles are named {name}_row{r}_col{c}.png, where name defaults to the image
filename up to its first dot.

Examples:
  # Split into the default 3x3 grid, tiles written to the current directory
  gridsplit photo.jpg

  # Split a downloaded image
  gridsplit https://example.com/poster.png --rows 2 --cols 2

  # 2 rows, 4 columns, tiles bundled as photo_split.zip in ./out
  gridsplit photo.jpg --rows 2 --cols 4 --zip -o out

  # Custom divider positions and a preview of the grid
  gridsplit photo.jpg --rows 1 --cols 3 --col-positions 20,70 --overlay

  # Crop first, then print the rectangles without rendering
  gridsplit photo.jpg --crop 100,50,800,600 --dry-run

  # Upload tiles to a MinIO bucket
  gridsplit photo.jpg --s3-endpoint http://localhost:9000 --s3-bucket tiles

  # Start HTTP server
  gridsplit serve --port 8080`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log.level"), viper.GetString("log.format"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no args, show help
		if len(args) == 0 {
			return cmd.Help()
		}
		return runSplit(cmd, args[0])
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gridsplit.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")

	// Grid options
	rootCmd.Flags().Int("rows", 3, "number of rows (1-20)")
	rootCmd.Flags().Int("cols", 3, "number of columns (1-20)")
	rootCmd.Flags().StringSlice("row-positions", nil, "horizontal divider positions in percent, e.g. 30,60")
	rootCmd.Flags().StringSlice("col-positions", nil, "vertical divider positions in percent, e.g. 25,50,75")
	rootCmd.Flags().String("crop", "", "crop before splitting, as 'x,y,width,height' in pixels")

	// Output options
	rootCmd.Flags().StringP("output", "o", ".", "output directory")
	rootCmd.Flags().String("name", "", "tile filename prefix (default: image filename up to the first dot)")
	rootCmd.Flags().Bool("zip", false, "bundle tiles into {name}_split.zip")
	rootCmd.Flags().Bool("overlay", false, "also write {name}_grid.png with the divider lines drawn")
	rootCmd.Flags().Bool("dry-run", false, "print the rectangles and exit")

	// Render options
	rootCmd.Flags().Int("workers", 0, "tiles encoded concurrently (default: number of CPUs)")
	rootCmd.Flags().String("compression", "default", "PNG compression (default|none|speed|best)")

	// HTTP options
	rootCmd.Flags().String("user-agent", "gridsplit/"+Version, "HTTP User-Agent header when the image is a URL")

	// S3 options
	rootCmd.Flags().String("s3-endpoint", "", "S3 compatible endpoint, e.g. a MinIO URL")
	rootCmd.Flags().String("s3-region", "", "S3 region")
	rootCmd.Flags().String("s3-bucket", "", "upload tiles to this bucket instead of the output directory")
	rootCmd.Flags().String("s3-prefix", "", "key prefix inside the bucket")
	rootCmd.Flags().String("s3-access-key", "", "S3 access key (default: AWS credential chain)")
	rootCmd.Flags().String("s3-secret-key", "", "S3 secret key")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("grid.rows", rootCmd.Flags().Lookup("rows"))
	viper.BindPFlag("grid.cols", rootCmd.Flags().Lookup("cols"))
	viper.BindPFlag("grid.row_positions", rootCmd.Flags().Lookup("row-positions"))
	viper.BindPFlag("grid.col_positions", rootCmd.Flags().Lookup("col-positions"))
	viper.BindPFlag("crop", rootCmd.Flags().Lookup("crop"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("name", rootCmd.Flags().Lookup("name"))
	viper.BindPFlag("zip", rootCmd.Flags().Lookup("zip"))
	viper.BindPFlag("overlay", rootCmd.Flags().Lookup("overlay"))
	viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("render.workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("render.compression", rootCmd.Flags().Lookup("compression"))
	viper.BindPFlag("user_agent", rootCmd.Flags().Lookup("user-agent"))
	viper.BindPFlag("s3.endpoint", rootCmd.Flags().Lookup("s3-endpoint"))
	viper.BindPFlag("s3.region", rootCmd.Flags().Lookup("s3-region"))
	viper.BindPFlag("s3.bucket", rootCmd.Flags().Lookup("s3-bucket"))
	viper.BindPFlag("s3.prefix", rootCmd.Flags().Lookup("s3-prefix"))
	viper.BindPFlag("s3.access_key", rootCmd.Flags().Lookup("s3-access-key"))
	viper.BindPFlag("s3.secret_key", rootCmd.Flags().Lookup("s3-secret-key"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".gridsplit" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gridsplit")
	}

	// GRIDSPLIT_SERVER_PORT overrides server.port
	viper.SetEnvPrefix("gridsplit")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
	return nil
}
