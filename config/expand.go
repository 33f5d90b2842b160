package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// envToken matches an escaped dollar or a braced variable reference.
var envToken = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands environment variables in probe targets.
//
//   - Only `${VAR}` is expanded; VAR unset is an error naming every missing
//     variable.
//   - `$$` emits a literal `$`.
//   - Any other `$` is kept as written, so `$HOME`, `$1` and regex anchors
//     such as `indexer$` or `indexer$?` pass through unchanged.
func ExpandEnvStrict(s string) (string, error) {
	var missing []string
	seen := make(map[string]bool)
	for _, match := range envToken.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if key == "" {
			continue
		}
		if _, ok := os.LookupEnv(key); !ok && !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return envToken.ReplaceAllStringFunc(s, func(token string) string {
		if token == "$$" {
			return "$"
		}
		return os.Getenv(token[2 : len(token)-1])
	}), nil
}
