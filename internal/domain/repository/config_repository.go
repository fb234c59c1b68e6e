package repository

import (
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
)

// ConfigRepository define a interface para carregar configuração.
type ConfigRepository interface {
	// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
	LoadConfigFile(filePath string) (*types.Config, error)
}
