package compositor

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/railwayapp/compositor/internal/output"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "compositor",
	Short: "Run Pulumi container apps locally with docker compose and dapr",
	Long: `Compositor reads a Pulumi program that deploys Azure Container Apps and
writes a docker-compose file that runs the same containers locally:
1. Extract - Find image and container app resources in the program
2. Synthesize - Turn every container into a compose service, adding a daprd
   sidecar next to each dapr enabled app
3. Assemble - Add the dapr placement service and network
4. Validate - Load the result with compose-go before it is written`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.compositor.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".compositor")
	}

	viper.SetEnvPrefix("COMPOSITOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	configErr := viper.ReadInConfig()

	output.SetupLogging(output.LogConfig{Verbose: viper.GetBool("verbose")})

	if configErr == nil {
		output.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		output.Warn("cannot read config file", "path", cfgFile, "err", configErr)
	}
}

// bindFlags binds the named flags of cmd to viper keys. Commands share keys
// such as "kind", so binding happens when a command runs rather than in init.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
