package llm

import "strings"

// StripMarkdownFence removes a surrounding ``` or ```json code fence that
// models often wrap structured answers in.
func StripMarkdownFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		// Drop the language tag line, e.g. "json".
		content = content[newline+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}
