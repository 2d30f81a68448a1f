// Package config loads index-server settings from an INI file, the
// same format and library the rest of the corpus configures itself
// with.
package config

import (
	"gopkg.in/ini.v1"
)

// Cfg holds the settings a process hosting one or more indexes needs:
// where index files live, how big each buffer pool is, and how chatty
// logging should be.
type Cfg struct {
	Raw *ini.File

	DataDir          string `default:"./data"`
	BufferPoolFrames int    `default:"64"`
	LrukHistoryLen   int    `default:"2"`
	LogLevel         string `default:"info"`
}

// Default returns the settings used when no config file is supplied.
func Default() *Cfg {
	return &Cfg{
		DataDir:          "./data",
		BufferPoolFrames: 64,
		LrukHistoryLen:   2,
		LogLevel:         "info",
	}
}

// Load reads path and overlays its [index] section on top of Default.
func Load(path string) (*Cfg, error) {
	cfg := Default()

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Raw = iniFile

	section := iniFile.Section("index")
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.BufferPoolFrames = section.Key("buffer_pool_frames").MustInt(cfg.BufferPoolFrames)
	cfg.LrukHistoryLen = section.Key("lruk_history_len").MustInt(cfg.LrukHistoryLen)
	cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)

	return cfg, nil
}
