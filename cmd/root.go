package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/foomo/vacuumpartshub/affiliate"
	"github.com/foomo/vacuumpartshub/config"
	"github.com/foomo/vacuumpartshub/render"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// options is shared by all sub-commands; it is filled in before any of them run.
type options struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand creates the vacuumhub command with all sub-commands.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "vacuumhub",
		Short:         "VacuumPartsHub repair guide generator and server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file (default ./vacuumhub.yaml if present)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("data-dir", "", "Directory holding one <model>.json file per vacuum model")
	_ = opts.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = opts.v.BindPFlag("data_dir", flags.Lookup("data-dir"))

	rootCmd.AddCommand(
		newBuildCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
		newListCommand(opts),
		newValidateCommand(opts),
	)
	return rootCmd
}

func (o *options) init() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	o.logger.Debug("config loaded", zap.Any("config", cfg))
	return nil
}

// newLogger logs JSON to stderr, or a readable console format in debug mode.
// stdout stays free for command output and the stdio MCP transport.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (o *options) resolver() *service.Resolver {
	return service.NewResolver(o.logger, service.ResolverSettings{
		DataDir:  o.cfg.DataDir,
		Exclude:  o.cfg.Exclude,
		CacheTTL: o.cfg.CacheTTL,
	})
}

func (o *options) renderer() (*render.Renderer, error) {
	return render.New(render.Settings{
		BaseURL:  o.cfg.BaseURL,
		SiteName: o.cfg.SiteName,
	}, affiliate.NewLinker(o.cfg.AffiliateTag))
}

func (o *options) service(resolver *service.Resolver) (service.Service, error) {
	renderer, err := o.renderer()
	if err != nil {
		return nil, err
	}
	return service.NewService(o.logger, resolver, renderer, service.SiteSettings{}), nil
}

func (o *options) httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
