package providers

import "strings"

func FormatInstructions(instr []string) string {
	if len(instr) == 0 {
		return "[Instructions]\n"
	}

	var b strings.Builder
	b.WriteString("[Instructions]\n")
	for _, rule := range instr {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

// StripCodeFences removes a surrounding markdown fence some models add.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// UserPrompt joins the configured instructions ahead of the prompt.
func UserPrompt(config *Config, prompt string) string {
	if len(config.Instructions) == 0 {
		return prompt
	}
	return FormatInstructions(config.Instructions) + "\n" + prompt
}
