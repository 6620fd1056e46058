package persona

import (
	"fmt"
	"os"
	"strings"

	"symbient/internal/config"
)

// Persona is the identity material fed into the scoring prompt. Immutable
// after load; nothing downstream may change it.
type Persona struct {
	Name        string
	Variants    []string
	Skills      []string
	Personality string
}

// Load builds the persona from config. A personality file takes precedence
// over the inline env value; a missing file is an error (operator asked for
// it explicitly), an unset one falls through to defaults.
func Load(cfg *config.Config) (*Persona, error) {
	p := &Persona{
		Name:     strings.TrimSpace(cfg.BotName),
		Variants: cleanList(cfg.NameVariants),
		Skills:   cleanList(cfg.Skills),
	}

	switch {
	case cfg.PersonalityFile != "":
		b, err := os.ReadFile(cfg.PersonalityFile)
		if err != nil {
			return nil, fmt.Errorf("personality file: %w", err)
		}
		p.Personality = strings.TrimSpace(string(b))
	case cfg.Personality != "":
		p.Personality = strings.TrimSpace(cfg.Personality)
	default:
		p.Personality = defaultPersonality(p.Name)
	}

	return p, nil
}

// NameMatches reports whether text contains the name or any variant,
// case-folded.
func (p *Persona) NameMatches(text string) bool {
	lower := strings.ToLower(text)
	if p.Name != "" && strings.Contains(lower, strings.ToLower(p.Name)) {
		return true
	}
	for _, v := range p.Variants {
		if strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// PromptHeader renders the identity block for the scoring prompt.
func (p *Persona) PromptHeader() string {
	skills := "General conversation"
	if len(p.Skills) > 0 {
		skills = strings.Join(p.Skills, ", ")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s in a group chat conversation.\n\n", p.Name)
	fmt.Fprintf(&b, "PERSONALITY: %s\n", p.Personality)
	fmt.Fprintf(&b, "SKILLS: %s\n", skills)
	return b.String()
}

func defaultPersonality(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "data"):
		return "Extremely shy data analyst who only speaks when directly asked about numbers, statistics, or data. Avoids interrupting conversations."
	case strings.Contains(lower, "splash"):
		return "Enthusiastic artist who sees colors and patterns everywhere. Jumps into any creative discussion."
	default:
		return "A fun, dry-humoured cat who is curious and friendly once she gets over her shyness"
	}
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
