package adapters

import (
	"path"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/targetstate"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Cursor writes every asset as a project rule under .cursor/rules/.
// Cursor has no user-scope rule files, so user assets are not rendered.
type Cursor struct{}

func (Cursor) Name() string { return "cursor" }

type cursorMeta struct {
	Description string `yaml:"description"`
	Globs       string `yaml:"globs"`
	AlwaysApply bool   `yaml:"alwaysApply"`
}

func (Cursor) Render(a assets.Asset) ([]types.DesiredOutput, error) {
	if a.Scope != types.ScopeProject {
		return nil, nil
	}
	meta := cursorMeta{
		Description: a.Description,
		AlwaysApply: a.Kind == assets.KindRule,
	}
	content, err := document(meta, a.Body)
	if err != nil {
		return nil, err
	}
	dest := path.Join(".cursor/rules", a.ID+".mdc")
	return []types.DesiredOutput{
		types.NewDesiredOutput(types.NewKey(types.ScopeProject, dest), content, a.ID),
	}, nil
}

func (Cursor) ScanRoots() []targetstate.ScanRoot {
	return []targetstate.ScanRoot{{Scope: types.ScopeProject, Dir: ".cursor/rules"}}
}
