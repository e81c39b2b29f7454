package config

import (
	"bytes"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"go.viam.com/fpdlink/logging"
)

// Read reads a config from the given file. ${VAR} references are replaced with the environment
// before parsing.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}

	cfg := Config{ConfigFilePath: originalPath}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config")
	}
	logger.Debugw("read config", "path", originalPath, "buses", len(cfg.Board.Buses), "profiles", len(cfg.Profiles))
	return &cfg, nil
}
