package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SettingsFile is the persisted configuration filename.
const SettingsFile = "framepipe.json"

// reservedKeys are the top-level keys that are not pipeline file entries.
var reservedKeys = map[string]bool{"order": true, "active": true}

// SaveSettings serializes the processing order, active set, and every
// pipeline's current setting values to dir. The write is a full overwrite;
// callers tolerate a missing or corrupt file on the next load.
//
// Only current values are persisted. Bounds, step, and tooltip are part of a
// plugin's compiled definition and are re-supplied at every load.
func SaveSettings(descriptors map[string]*Descriptor, order, active []string, dir string) error {
	out, err := sjson.Set("{}", "order", order)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	out, err = sjson.Set(out, "active", active)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	files := make([]string, 0, len(descriptors))
	for file := range descriptors {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		d := descriptors[file]
		if d.Settings == nil {
			continue
		}
		for _, key := range d.Settings.Keys() {
			st, _ := d.Settings.Get(key)
			out, err = sjson.Set(out, escapePath(file)+"."+escapePath(key), st.Value)
			if err != nil {
				return fmt.Errorf("save settings %s/%s: %w", file, key, err)
			}
		}
	}

	pretty := gjson.Get(out, "@pretty").Raw
	path := filepath.Join(dir, SettingsFile)
	if err := os.WriteFile(path, []byte(pretty), 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadSettings reconciles the persisted configuration in dir against the
// currently loaded descriptors and returns the working runtime state plus a
// flag reporting whether persisted state was actually read.
//
// Reconciliation never fails for missing files or stale keys: persisted
// values for settings a plugin still declares are written in place into its
// descriptor (and its own settings table); unknown pipelines and unknown
// setting keys are silently dropped; newly discovered pipelines are appended
// to the order, inactive. ToLoad comes back primed with the full reconciled
// active list so every active pipeline receives on_load before first use.
func LoadSettings(descriptors map[string]*Descriptor, dir string) (*RuntimeData, bool) {
	data, err := os.ReadFile(filepath.Join(dir, SettingsFile))
	if err != nil || !gjson.ValidBytes(data) {
		// Missing or malformed file is "no persisted configuration".
		return NewRuntimeData(discoveryOrder(descriptors)), false
	}

	root := gjson.ParseBytes(data)
	root.ForEach(func(k, v gjson.Result) bool {
		file := k.String()
		if reservedKeys[file] {
			return true
		}
		d, ok := descriptors[file]
		if !ok || d.Settings == nil {
			return true
		}
		v.ForEach(func(sk, sv gjson.Result) bool {
			applyPersisted(d, sk.String(), sv.Value())
			return true
		})
		return true
	})

	persisted := stringSlice(root.Get("order"))
	order := make([]string, 0, len(descriptors))
	seen := make(map[string]bool, len(persisted))
	for _, file := range persisted {
		seen[file] = true
		if _, ok := descriptors[file]; ok {
			order = append(order, file)
		}
	}
	for _, file := range discoveryOrder(descriptors) {
		if !seen[file] {
			order = append(order, file)
		}
	}

	active := make([]string, 0)
	for _, file := range stringSlice(root.Get("active")) {
		if _, ok := descriptors[file]; ok {
			active = append(active, file)
		}
	}

	return &RuntimeData{
		Order:    order,
		Active:   active,
		ToLoad:   append([]string{}, active...),
		ToUnload: []string{},
		Changes:  make(map[string]map[string]float64),
	}, true
}

// applyPersisted overwrites one setting's value from its persisted raw form.
// Keys the plugin no longer declares are ignored; keys the plugin added
// since the save keep their compiled-in defaults.
func applyPersisted(d *Descriptor, key string, raw any) {
	st, ok := d.Settings.Get(key)
	if !ok {
		return
	}
	value := Decode(d.Mappings[key], raw)
	st.Value = value
	if d.Callbacks.WriteSetting != nil {
		// Descriptor and plugin-side table stay in lockstep.
		_ = d.Callbacks.WriteSetting(key, value)
	}
}

func stringSlice(r gjson.Result) []string {
	arr := r.Array()
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, e.String())
	}
	return out
}

// escapePath escapes gjson/sjson path syntax in a key. Pipeline file keys
// contain dots ("gamma.lua") which would otherwise split the path.
var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
