package folders

import (
	"strings"
	"unicode/utf8"

	"opsflow/internal/platform/ids"
)

// RootSentinel is accepted wherever a parent id is expected and means "no parent".
const RootSentinel = "root"

const maxNameLength = 255

// maxDepth bounds ancestor walks and subtree rewrites.
const maxDepth = 256

// ParentRef resolves a client-supplied parent reference. Only a canonical
// UUID v4 refers to a folder; anything else is the top level.
func ParentRef(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == RootSentinel || !ids.Valid(raw) {
		return "", false
	}
	return raw, true
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", ErrNameRequired
	case strings.Contains(name, "/"):
		return "", ErrNameInvalid
	case utf8.RuneCountInString(name) > maxNameLength:
		return "", ErrNameTooLong
	}
	return name, nil
}

// BuildPath joins a parent path and a child name; an empty parent path is the top level.
func BuildPath(parentPath, name string) string {
	if parentPath == "" || parentPath == "/" {
		return "/" + name
	}
	return parentPath + "/" + name
}
