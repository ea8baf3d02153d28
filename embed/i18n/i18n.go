package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed pt-BR.json en-US.json
var files embed.FS

// Strings holds the localized text the engine needs. Everything else is the
// presentation layer's concern.
type Strings struct {
	DayNames     [7]string `json:"day_names"`
	FutureTasks  string    `json:"future_tasks"`
	TutorialTask string    `json:"tutorial_task"`
	DateLayout   string    `json:"date_layout"`
	ShortLayout  string    `json:"short_layout"`
}

// Load returns the strings for a bundle name ("pt-BR" or "en-US").
func Load(name string) (Strings, error) {
	data, err := files.ReadFile(name + ".json")
	if err != nil {
		return Strings{}, fmt.Errorf("failed to read locale bundle %s: %w", name, err)
	}
	var s Strings
	if err := json.Unmarshal(data, &s); err != nil {
		return Strings{}, fmt.Errorf("failed to parse locale bundle %s: %w", name, err)
	}
	return s, nil
}

// MustLoad is Load for bundles known to be embedded.
func MustLoad(name string) Strings {
	s, err := Load(name)
	if err != nil {
		panic(err)
	}
	return s
}
