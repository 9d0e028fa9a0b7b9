package cli

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/spf13/viper"
)

const embeddedDefaultsDecodeErrorTemplateConstant = "unable to decode embedded aigit defaults: %w"

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded aigit defaults and their configuration type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	defaultsCopy := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(defaultsCopy, embeddedDefaultConfigurationContent)
	return defaultsCopy, configurationTypeConstant
}

// EmbeddedDefaultSettings decodes the embedded defaults into the nested key map that config init writes.
func EmbeddedDefaultSettings() (map[string]any, error) {
	defaultsData, defaultsType := EmbeddedDefaultConfiguration()
	defaultsReader := viper.New()
	defaultsReader.SetConfigType(defaultsType)
	if readError := defaultsReader.ReadConfig(bytes.NewReader(defaultsData)); readError != nil {
		return nil, fmt.Errorf(embeddedDefaultsDecodeErrorTemplateConstant, readError)
	}
	return defaultsReader.AllSettings(), nil
}
