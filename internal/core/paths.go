package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir    string
	DataDir    string
	LogFile    string
	StateFile  string
	ConfigFile string
	ExportFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = &Paths{
			HomeDir:    homeDir,
			DataDir:    filepath.Join(homeDir, ".local", "share", "wisp"),
			LogFile:    filepath.Join(homeDir, ".local", "share", "wisp", "wisp.log"),
			StateFile:  filepath.Join(homeDir, ".local", "share", "wisp", "state.db"),
			ConfigFile: filepath.Join(homeDir, ".config", "wisp", "config.yaml"),
			ExportFile: filepath.Join(homeDir, ".local", "share", "wisp", "export.json"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func StateFile() string {
	ensureDefaultPaths()
	return defaultPaths.StateFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

func ExportFile() string {
	ensureDefaultPaths()
	return defaultPaths.ExportFile
}
