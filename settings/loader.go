// Package settings loads the configuration directory spec.md §4.12/§6
// describes into an immutable model.Settings value: one
// general_settings.json at the directory root, and one settings.json
// per per-network subdirectory whose name contains that network's tag.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evalgo/mansa/model"
)

const generalSettingsFile = "general_settings.json"
const networkSettingsFile = "settings.json"

// Load walks dir (non-recursively) and builds a model.Settings.
// Unrecognized entries are ignored (spec.md §6). A missing or
// unparseable general_settings.json, or an unparseable per-network
// settings.json, is a fatal configuration error (spec.md §7).
func Load(dir string) (model.Settings, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Settings{}, fmt.Errorf("settings: reading %s: %w", dir, err)
	}

	result := model.Settings{Networks: make(map[model.SocialNetworkTag]model.NetworkSettings)}
	var haveGeneral bool

	for _, entry := range entries {
		switch {
		case !entry.IsDir() && entry.Name() == generalSettingsFile:
			general, err := loadGeneral(filepath.Join(dir, entry.Name()))
			if err != nil {
				return model.Settings{}, err
			}
			result.General = general
			haveGeneral = true

		case entry.IsDir():
			tag, ok := matchNetworkTag(entry.Name())
			if !ok {
				continue
			}
			ns, err := loadNetwork(filepath.Join(dir, entry.Name(), networkSettingsFile))
			if err != nil {
				return model.Settings{}, err
			}
			result.Networks[tag] = ns
		}
	}

	if !haveGeneral {
		return model.Settings{}, fmt.Errorf("settings: %s is required in %s", generalSettingsFile, dir)
	}
	return result, nil
}

// matchNetworkTag reports whether dirName contains a known
// SocialNetworkTag as a substring, the loose matching rule spec.md §6
// specifies ("a subdirectory whose name contains the network tag
// string").
func matchNetworkTag(dirName string) (model.SocialNetworkTag, bool) {
	lower := strings.ToLower(dirName)
	for _, tag := range []model.SocialNetworkTag{model.Reddit, model.Twitter} {
		if strings.Contains(lower, string(tag)) {
			return tag, true
		}
	}
	return "", false
}

func loadGeneral(path string) (model.GeneralSettings, error) {
	var g model.GeneralSettings
	if err := decodeFile(path, &g); err != nil {
		return model.GeneralSettings{}, fmt.Errorf("settings: %s: %w", path, err)
	}
	return g, nil
}

func loadNetwork(path string) (model.NetworkSettings, error) {
	var ns model.NetworkSettings
	if err := decodeFile(path, &ns); err != nil {
		return model.NetworkSettings{}, fmt.Errorf("settings: %s: %w", path, err)
	}
	return ns, nil
}

func decodeFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(out)
}
