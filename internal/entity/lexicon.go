package entity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon maps the phrases users say to canonical entity IDs. It is
// loaded once at startup and read-only thereafter, so it is safe for
// concurrent use. All lookups are case-insensitive.
type Lexicon struct {
	rooms   map[string]roomEntry
	lights  map[string]string
	locks   map[string]string
	scenes  map[string]string
	players map[string]string
}

// roomEntry holds a room's per-domain entity IDs. A room resolves to a
// different entity depending on the intent family (its light group for
// light intents, its thermostat for climate intents).
type roomEntry struct {
	Name          string
	LightEntity   string
	ClimateEntity string
}

// YAML file forms.
type lexiconFile struct {
	Rooms        []roomSpec   `yaml:"rooms"`
	Lights       []entitySpec `yaml:"lights"`
	Locks        []entitySpec `yaml:"locks"`
	Scenes       []entitySpec `yaml:"scenes"`
	MediaPlayers []entitySpec `yaml:"media_players"`
}

type roomSpec struct {
	Name          string   `yaml:"name"`
	Synonyms      []string `yaml:"synonyms"`
	LightEntity   string   `yaml:"light_entity"`
	ClimateEntity string   `yaml:"climate_entity"`
}

type entitySpec struct {
	Canonical string   `yaml:"canonical"`
	Synonyms  []string `yaml:"synonyms"`
}

// LoadLexicon reads the entity lexicon from a YAML file.
//
// Every canonical entity ID must carry a domain prefix ("domain.name").
// Synonyms are folded to lower case; a synonym appearing twice within a
// category is a load error.
//
// Parameters:
//   - path: Path to the lexicon YAML file
//
// Returns:
//   - *Lexicon: Loaded lexicon with case-folded lookup maps
//   - error: If reading, parsing, or validation fails
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon file: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon builds a lexicon from raw YAML. Split out from
// LoadLexicon so tests can build lexicons without touching the filesystem.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing lexicon file: %w", err)
	}

	lex := &Lexicon{
		rooms:   make(map[string]roomEntry),
		lights:  make(map[string]string),
		locks:   make(map[string]string),
		scenes:  make(map[string]string),
		players: make(map[string]string),
	}

	for _, spec := range file.Rooms {
		if spec.Name == "" {
			return nil, fmt.Errorf("room entry with no name")
		}
		entry := roomEntry{
			Name:          spec.Name,
			LightEntity:   spec.LightEntity,
			ClimateEntity: spec.ClimateEntity,
		}
		for _, id := range []string{spec.LightEntity, spec.ClimateEntity} {
			if id != "" && !strings.Contains(id, ".") {
				return nil, fmt.Errorf("room %s: entity %q has no domain prefix", spec.Name, id)
			}
		}
		keys := append([]string{spec.Name}, spec.Synonyms...)
		for _, key := range keys {
			folded := strings.ToLower(strings.TrimSpace(key))
			if _, dup := lex.rooms[folded]; dup {
				return nil, fmt.Errorf("duplicate room synonym %q", folded)
			}
			lex.rooms[folded] = entry
		}
	}

	categories := []struct {
		name    string
		specs   []entitySpec
		targets map[string]string
	}{
		{"lights", file.Lights, lex.lights},
		{"locks", file.Locks, lex.locks},
		{"scenes", file.Scenes, lex.scenes},
		{"media_players", file.MediaPlayers, lex.players},
	}

	for _, cat := range categories {
		for _, spec := range cat.specs {
			if !strings.Contains(spec.Canonical, ".") {
				return nil, fmt.Errorf("%s: canonical %q has no domain prefix", cat.name, spec.Canonical)
			}
			for _, syn := range spec.Synonyms {
				folded := strings.ToLower(strings.TrimSpace(syn))
				if _, dup := cat.targets[folded]; dup {
					return nil, fmt.Errorf("%s: duplicate synonym %q", cat.name, folded)
				}
				cat.targets[folded] = spec.Canonical
			}
		}
	}

	return lex, nil
}

// Room looks up a room by name or synonym.
func (l *Lexicon) Room(phrase string) (roomEntry, bool) {
	entry, ok := l.rooms[fold(phrase)]
	return entry, ok
}

// Light looks up a named light or light group.
func (l *Lexicon) Light(phrase string) (string, bool) {
	id, ok := l.lights[fold(phrase)]
	return id, ok
}

// Lock looks up a named lock.
func (l *Lexicon) Lock(phrase string) (string, bool) {
	id, ok := l.locks[fold(phrase)]
	return id, ok
}

// Scene looks up a named scene.
func (l *Lexicon) Scene(phrase string) (string, bool) {
	id, ok := l.scenes[fold(phrase)]
	return id, ok
}

// MediaPlayer looks up a named media player.
func (l *Lexicon) MediaPlayer(phrase string) (string, bool) {
	id, ok := l.players[fold(phrase)]
	return id, ok
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
