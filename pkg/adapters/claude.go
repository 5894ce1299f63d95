package adapters

import (
	"path"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/targetstate"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Claude writes slash commands, rules and skills under .claude/.
type Claude struct{}

func (Claude) Name() string { return "claude" }

type claudeMeta struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func (Claude) Render(a assets.Asset) ([]types.DesiredOutput, error) {
	var dest string
	meta := claudeMeta{Description: a.Description}
	switch a.Kind {
	case assets.KindRule:
		dest = path.Join(".claude/rules", a.ID+".md")
	case assets.KindSkill:
		dest = path.Join(".claude/skills", a.ID, "SKILL.md")
		meta.Name = path.Base(a.ID)
	default:
		dest = path.Join(".claude/commands", a.ID+".md")
	}

	content, err := document(meta, a.Body)
	if err != nil {
		return nil, err
	}
	return []types.DesiredOutput{
		types.NewDesiredOutput(types.NewKey(a.Scope, dest), content, a.ID),
	}, nil
}

func (Claude) ScanRoots() []targetstate.ScanRoot {
	var out []targetstate.ScanRoot
	for _, scope := range []types.Scope{types.ScopeProject, types.ScopeUser} {
		for _, dir := range []string{".claude/commands", ".claude/rules", ".claude/skills"} {
			out = append(out, targetstate.ScanRoot{Scope: scope, Dir: dir})
		}
	}
	return out
}
