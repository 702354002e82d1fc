package denylist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

//go:embed disallowed.json
var defaultConfig []byte

// Config is the reviewable, on-disk form of the sandbox policy.
type Config struct {
	Properties []string `json:"properties" yaml:"properties" validate:"dive,required"`
	Functions  []string `json:"functions" yaml:"functions" validate:"dive,required"`
	Objects    []string `json:"objects" yaml:"objects" validate:"dive,required"`
}

// DenyList is the immutable, loaded-once form of Config used by the validator.
type DenyList struct {
	properties map[string]struct{}
	functions  map[string]struct{}
	objects    map[string]struct{}
	keywords   map[string]struct{}
}

var configValidator = validator.New()

// New validates cfg and builds the lookup sets. The keyword set is the union
// of all three lists.
func New(cfg Config) (*DenyList, error) {
	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid deny-list: %w", err)
	}

	d := &DenyList{
		properties: toSet(cfg.Properties),
		functions:  toSet(cfg.Functions),
		objects:    toSet(cfg.Objects),
		keywords:   make(map[string]struct{}),
	}
	for _, list := range [][]string{cfg.Properties, cfg.Objects, cfg.Functions} {
		for _, name := range list {
			d.keywords[name] = struct{}{}
		}
	}
	return d, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew(cfg Config) *DenyList {
	d, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultConfig returns a copy of the embedded policy.
func DefaultConfig() Config {
	var cfg Config
	if err := json.Unmarshal(defaultConfig, &cfg); err != nil {
		panic(fmt.Sprintf("embedded deny-list is malformed: %v", err))
	}
	return cfg
}

// Default returns the deny-list built from the embedded policy.
func Default() *DenyList {
	return MustNew(DefaultConfig())
}

// IsProperty reports whether name may never be referenced.
func (d *DenyList) IsProperty(name string) bool {
	_, ok := d.properties[name]
	return ok
}

// IsFunction reports whether name may never be called.
func (d *DenyList) IsFunction(name string) bool {
	_, ok := d.functions[name]
	return ok
}

// IsObject reports whether name may never be instantiated with new.
func (d *DenyList) IsObject(name string) bool {
	_, ok := d.objects[name]
	return ok
}

// IsKeyword reports whether name appears in any of the three lists.
func (d *DenyList) IsKeyword(name string) bool {
	_, ok := d.keywords[name]
	return ok
}

func (d *DenyList) Properties() []string { return sortedKeys(d.properties) }
func (d *DenyList) Functions() []string  { return sortedKeys(d.functions) }
func (d *DenyList) Objects() []string    { return sortedKeys(d.objects) }
func (d *DenyList) Keywords() []string   { return sortedKeys(d.keywords) }

// Config returns the policy in its serializable form, each list sorted.
func (d *DenyList) Config() Config {
	return Config{
		Properties: d.Properties(),
		Functions:  d.Functions(),
		Objects:    d.Objects(),
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
