package config

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configFileName string
var configFilePath string

func SetConfig(goEnv string) {
	log.Info().Msgf("Loading configuration for environment: %s", goEnv)

	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")

	if goEnv == "production" {
		configFileName = "config.prod"
	} else {
		configFileName = "config.dev"
	}
	viper.SetConfigName(configFileName)

	viper.SetDefault("server.port", ":3000")
	viper.SetDefault("database.url", "data/sandoka.db")
	viper.SetDefault("auth.issuer", "sandoka")
	viper.SetDefault("auth.access_token_ttl", 15*time.Minute)
	viper.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	viper.SetDefault("trash.retention_days", 30)
	viper.SetDefault("trash.sweep_interval", time.Hour)

	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read config file")
	}

	configFilePath = viper.ConfigFileUsed()
	log.Info().Msgf("Config file loaded: %s", configFilePath)

	err = viper.Unmarshal(&Conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to unmarshal config")
	}
}

// SaveConfig writes the current configuration back to the YAML file.
func SaveConfig() error {
	data, err := yaml.Marshal(&Conf)
	if err != nil {
		return err
	}

	err = os.WriteFile(configFilePath, data, 0644)
	if err != nil {
		return err
	}

	log.Info().Msgf("Configuration saved to %s", configFilePath)
	return nil
}

type Handler struct{}

type PublicConfigResponse struct {
	Server Server `json:"server"`
	Trash  Trash  `json:"trash"`
}

type UpdateConfigRequest struct {
	Server Server `json:"server"`
	Trash  Trash  `json:"trash"`
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/config", web.Handler(h.GetConfig))
	mux.Handle("PUT /api/config", web.Handler(h.UpdateConfig))
}

// GetConfig returns the non-secret part of the current configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	response := PublicConfigResponse{
		Server: Conf.Server,
		Trash:  Conf.Trash,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode config"}
	}
	return nil
}

// UpdateConfig applies and persists an updated configuration.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) *web.Error {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Err: err, Code: http.StatusBadRequest, Message: "Invalid request body"}
	}

	if req.Trash.RetentionDays <= 0 {
		return &web.Error{Code: http.StatusBadRequest, Message: "retention_days must be positive"}
	}
	if req.Trash.SweepInterval <= 0 {
		return &web.Error{Code: http.StatusBadRequest, Message: "sweep_interval must be positive"}
	}

	Conf.Server = req.Server
	Conf.Trash = req.Trash

	if err := SaveConfig(); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to save config"}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
