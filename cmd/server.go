/*
Copyright © 2026 SafeHer Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"

	devConfig "github.com/safeher/safeher/dev/config"
	"github.com/safeher/safeher/server"
	"github.com/safeher/safeher/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a safeher server",
	Long: `The safeher server houses the SOS alert machinery - emergency
contacts, settings, location tracking, alert dispatch, voice triggering
& the fake-call simulation - behind a local HTTP API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv, isTestEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	config := viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	if serverConfigFile == "" {
		cobra.CheckErr(formattedError("a server config is required - pass one with --sconfig or use --dev"))
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		cobra.CheckErr(formattedError("error reading server config file: %v", err))
	}

	return config
}

// devConfigFilePath materializes the default dev config on first use &
// returns its path
func devConfigFilePath() string {
	workingDir, err := os.Getwd()
	cobra.CheckErr(err)

	configDir := filepath.Join(workingDir, "dev", "config")
	cobra.CheckErr(os.MkdirAll(configDir, 0755))

	configFilePath := filepath.Join(configDir, "server.yml")
	if !utils.FileExist(configFilePath) {
		cobra.CheckErr(ioutil.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600))
	}

	return configFilePath
}
