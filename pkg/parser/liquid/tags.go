package liquid

// blockTags take a body and a matching end tag.
//
//nolint:gochecknoglobals // read-only lookup tables
var blockTags = map[string]bool{
	"if":          true,
	"unless":      true,
	"case":        true,
	"for":         true,
	"tablerow":    true,
	"capture":     true,
	"comment":     true,
	"raw":         true,
	"form":        true,
	"cache":       true,
	"background":  true,
	"parse_json":  true,
	"try":         true,
	"transaction": true,
	"content_for": true,
}

// branchTags lists, per block, the tags that open a new branch.
//
//nolint:gochecknoglobals // read-only lookup tables
var branchTags = map[string]map[string]bool{
	"if":     {"elsif": true, "else": true},
	"unless": {"elsif": true, "else": true},
	"case":   {"when": true, "else": true},
	"for":    {"else": true},
	"try":    {"catch": true},
}

//nolint:gochecknoglobals // read-only lookup tables
var inlineTags = map[string]bool{
	"#":                true,
	"assign":           true,
	"break":            true,
	"continue":         true,
	"cycle":            true,
	"decrement":        true,
	"echo":             true,
	"export":           true,
	"function":         true,
	"graphql":          true,
	"hash_assign":      true,
	"include":          true,
	"include_form":     true,
	"increment":        true,
	"liquid":           true,
	"log":              true,
	"print":            true,
	"redirect_to":      true,
	"render":           true,
	"response_headers": true,
	"response_status":  true,
	"return":           true,
	"rollback":         true,
	"session":          true,
	"sign_in":          true,
	"spam_protection":  true,
	"theme_render":     true,
	"yield":            true,
}

// IsBlockTag reports whether name takes a body and an end tag.
func IsBlockTag(name string) bool {
	return blockTags[name]
}

// IsKnownTag reports whether name is a tag the parser understands.
func IsKnownTag(name string) bool {
	return blockTags[name] || inlineTags[name]
}

func isBranch(block, name string) bool {
	return branchTags[block][name]
}

func isAnyBranch(name string) bool {
	for _, names := range branchTags {
		if names[name] {
			return true
		}
	}
	return false
}
