package config

import "time"

var Conf Config

type Config struct {
	Server     Server     `mapstructure:"server" json:"server" yaml:"server"`
	Datasource Datasource `mapstructure:"database" json:"database" yaml:"database"`
	Auth       Auth       `mapstructure:"auth" json:"auth" yaml:"auth"`
	Trash      Trash      `mapstructure:"trash" json:"trash" yaml:"trash"`
}

type Server struct {
	Port string `mapstructure:"port" json:"port" yaml:"port"`
}

type Datasource struct {
	URL string `mapstructure:"url" json:"url" yaml:"url"`
}

type Auth struct {
	Secret          string        `mapstructure:"secret" json:"-" yaml:"secret"`
	Issuer          string        `mapstructure:"issuer" json:"issuer" yaml:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" json:"accessTokenTtl" yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" json:"refreshTokenTtl" yaml:"refresh_token_ttl"`
}

type Trash struct {
	RetentionDays int           `mapstructure:"retention_days" json:"retentionDays" yaml:"retention_days"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" json:"sweepInterval" yaml:"sweep_interval"`
}
