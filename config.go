package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
)

// tomlParser is an ff.ConfigFileParser for flat TOML files, for example:
//
//	scan-interval = "30s"
//	levels = 5
//	all = true
func tomlParser(r io.Reader, set func(name, value string) error) error {
	var values map[string]interface{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := values[name].(type) {
		case map[string]interface{}:
			return fmt.Errorf("config key %q: tables are not supported", name)
		case []interface{}:
			for _, elem := range v {
				if err := set(name, fmt.Sprint(elem)); err != nil {
					return err
				}
			}
		default:
			if err := set(name, fmt.Sprint(v)); err != nil {
				return err
			}
		}
	}
	return nil
}
