// Package adapters renders assets into the files each agent tool reads.
package adapters

import (
	"bytes"
	"sort"
	"strings"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/provenance"
	"github.com/arthur-debert/calvin/pkg/targetstate"
	"github.com/arthur-debert/calvin/pkg/types"
	"gopkg.in/yaml.v3"
)

// Adapter renders assets for one target tool.
type Adapter interface {
	Name() string
	// Render returns the outputs for one asset; none when the tool has no
	// place for it.
	Render(a assets.Asset) ([]types.DesiredOutput, error)
	// ScanRoots lists the directories the adapter writes into, searched for
	// marker-bearing orphans.
	ScanRoots() []targetstate.ScanRoot
}

var registry = map[string]Adapter{
	"claude": Claude{},
	"cursor": Cursor{},
}

// Names lists the registered adapters, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Select returns the named adapters in the given order.
func Select(names []string) ([]Adapter, error) {
	out := make([]Adapter, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		a, ok := registry[name]
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "unknown target %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		seen[name] = true
		out = append(out, a)
	}
	return out, nil
}

// RenderAll renders every asset through every adapter it targets. Outputs
// carry the provenance marker.
func RenderAll(adapters []Adapter, list []assets.Asset) ([]types.DesiredOutput, error) {
	var out []types.DesiredOutput
	for _, a := range list {
		for _, ad := range adapters {
			if !a.TargetsAdapter(ad.Name()) {
				continue
			}
			rendered, err := ad.Render(a)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrAssetRender, "%s: cannot render %s", ad.Name(), a.Source).
					WithDetail(errors.DetailPath, a.Source)
			}
			for _, r := range rendered {
				out = append(out, provenance.Ensure(r))
			}
		}
	}
	return out, nil
}

// ScanRoots collects the scan roots of every adapter.
func ScanRoots(adapters []Adapter) []targetstate.ScanRoot {
	var out []targetstate.ScanRoot
	for _, ad := range adapters {
		out = append(out, ad.ScanRoots()...)
	}
	return out
}

// document renders YAML frontmatter followed by body. Empty meta renders
// the body alone.
func document(meta interface{}, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if meta != nil {
		head, err := yaml.Marshal(meta)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(string(head)); s != "" && s != "{}" {
			buf.WriteString("---\n")
			buf.Write(head)
			buf.WriteString("---\n")
		}
	}
	buf.Write(body)
	return buf.Bytes(), nil
}
