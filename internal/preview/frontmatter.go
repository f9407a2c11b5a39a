package preview

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Front is the optional YAML header of a markdown document.
type Front struct {
	Title string `yaml:"title"`
}

// Split separates a leading YAML block between --- lines from the markdown
// body. A missing closing delimiter or invalid YAML leaves src as the body.
func Split(src string) (Front, string) {
	trimmed := strings.TrimLeft(src, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return Front{}, src
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return Front{}, src
	}

	var front Front
	if err := yaml.Unmarshal([]byte(rest[:idx]), &front); err != nil {
		return Front{}, src
	}
	body := strings.TrimLeft(rest[idx+1+len(delim):], "\n\r")
	return front, body
}

// Heading returns the front matter title, else the first H1, else "".
func Heading(src string) string {
	front, body := Split(src)
	if t := strings.TrimSpace(front.Title); t != "" {
		return t
	}
	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
