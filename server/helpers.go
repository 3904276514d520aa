package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/safeher/safeher/shared"
	"github.com/safeher/safeher/utils"
	"github.com/spf13/viper"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func validatedConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := &shared.ServerConfig{}

	fatalOnError(config.Unmarshal(serverConfig))

	if err := validate.Struct(serverConfig); err != nil {
		logg.Fatalf("invalid server config: %v", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	return serverConfig
}

func serve(httpServer *http.Server) {
	logg.Infof("SafeHer server is listening on port %v", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func (safeherApp *app) cleanup(httpServer *http.Server) {
	// Stop the periodic jobs & the voice listener before shutting down
	safeherApp.cronScheduler.Stop()
	safeherApp.voiceListener.Stop()
	safeherApp.engine.Cancel()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("SafeHer server shutdown failed:%+s", err)
	}

	logg.Infof("SafeHer server stopped properly")
}

// configDirectory retrieves the directory holding safeher data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	configFolderName := "safeher"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
