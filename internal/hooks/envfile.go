package hooks

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SessionIDEnv is the variable the session-start hook exports for later
// commands in the same agent session.
const SessionIDEnv = "SESSION_SHARE_SESSION_ID"

var envName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExportLine renders a shell export statement with value double-quoted.
func ExportLine(name, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`", "\n", " ")
	return fmt.Sprintf("export %s=\"%s\"\n", name, r.Replace(value))
}

// AppendExport appends an export statement for name=value to the env file
// at path. Existing content is never rewritten.
func AppendExport(path, name, value string) error {
	if path == "" {
		return fmt.Errorf("no env file configured")
	}
	if !envName.MatchString(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening env file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(ExportLine(name, value)); err != nil {
		return fmt.Errorf("appending to env file: %w", err)
	}
	return nil
}
