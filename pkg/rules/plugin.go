package rules

import (
	"fmt"

	"github.com/gnana997/uiwind/pkg/util"
)

// Plugin is a registration unit. Install may call any Builder method; a
// plugin's contributions are append-only and are never removed.
type Plugin interface {
	Name() string
	Version() string
	Install(b *Builder)
}

// PluginInfo records an installed plugin.
type PluginInfo struct {
	Name     string `json:"name" validate:"required"`
	Version  string `json:"version" validate:"required,semver"`
	Rules    int    `json:"rules"`
	Variants int    `json:"variants"`
}

type funcPlugin struct {
	name    string
	version string
	install func(b *Builder)
}

func (p funcPlugin) Name() string       { return p.name }
func (p funcPlugin) Version() string    { return p.version }
func (p funcPlugin) Install(b *Builder) { p.install(b) }

// NewPlugin wraps an install function as a Plugin.
func NewPlugin(name, version string, install func(b *Builder)) Plugin {
	return funcPlugin{name: name, version: version, install: install}
}

func validatePlugin(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin is nil")
	}
	info := PluginInfo{Name: p.Name(), Version: p.Version()}
	if err := util.Validator().Struct(info); err != nil {
		return fmt.Errorf("plugin %q: invalid metadata: %w", info.Name, err)
	}
	return nil
}
