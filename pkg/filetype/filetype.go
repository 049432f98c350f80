// Package filetype classifies project paths into analysis categories and
// platformOS file kinds.
//
// The category decides which parser builds a file's tree and which checks
// apply to it. The kind follows the platformOS directory layout and is what
// cross-file checks use to resolve references such as partial names.
package filetype

import (
	"path"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Category is the analysis category of a file.
type Category string

// Categories.
const (
	Liquid  Category = "liquid"
	HTML    Category = "html"
	YAML    Category = "yaml"
	GraphQL Category = "graphql"
	Asset   Category = "asset"
	Other   Category = "other"
)

// AllCategories lists every category in a stable order.
func AllCategories() []Category {
	return []Category{Liquid, HTML, YAML, GraphQL, Asset, Other}
}

// Covers returns the categories of checks that apply to a file of category
// c. Liquid templates embed HTML, so HTML checks run on them too.
func (c Category) Covers() []Category {
	if c == Liquid {
		return []Category{Liquid, HTML}
	}
	return []Category{c}
}

// Kind is the platformOS role of a file.
type Kind string

// Kinds.
const (
	KindPage          Kind = "page"
	KindPartial       Kind = "partial"
	KindLayout        Kind = "layout"
	KindForm          Kind = "form"
	KindEmail         Kind = "email"
	KindSMS           Kind = "sms"
	KindAPICall       Kind = "api_call"
	KindMigration     Kind = "migration"
	KindTranslation   Kind = "translation"
	KindSchema        Kind = "schema"
	KindUserSchema    Kind = "user_schema"
	KindConfig        Kind = "config"
	KindGraphQLQuery  Kind = "graphql"
	KindAuthorization Kind = "authorization_policy"
	KindAsset         Kind = "asset"
	KindOther         Kind = "other"
)

// Info is the classification of one path.
type Info struct {
	Category Category
	Kind     Kind

	// Module is the module name for paths under modules/<name>/, or "".
	Module string

	// Name is the logical name used to reference the file, e.g. the
	// partial name "shared/card" for app/views/partials/shared/card.liquid.
	Name string
}

// layoutDirs maps directories below an app root to the kind of file they hold.
//
//nolint:gochecknoglobals // read-only lookup table
var layoutDirs = []struct {
	dir  string
	kind Kind
}{
	{"views/pages", KindPage},
	{"views/partials", KindPartial},
	{"views/layouts", KindLayout},
	{"lib", KindPartial},
	{"forms", KindForm},
	{"form_configurations", KindForm},
	{"emails", KindEmail},
	{"notifications/email_notifications", KindEmail},
	{"smses", KindSMS},
	{"notifications/sms_notifications", KindSMS},
	{"api_calls", KindAPICall},
	{"notifications/api_call_notifications", KindAPICall},
	{"migrations", KindMigration},
	{"translations", KindTranslation},
	{"schema", KindSchema},
	{"custom_model_types", KindSchema},
	{"model_schemas", KindSchema},
	{"graphql", KindGraphQLQuery},
	{"graph_queries", KindGraphQLQuery},
	{"authorization_policies", KindAuthorization},
	{"assets", KindAsset},
}

// Classify returns the category and kind of a slash-separated project path.
func Classify(p string) Info {
	p = path.Clean(strings.TrimPrefix(p, "./"))

	module, rel := splitAppRoot(p)
	info := Info{Category: categoryOf(p), Kind: KindOther, Module: module}

	switch rel {
	case "config.yml":
		info.Kind = KindConfig
		return info
	case "user.yml":
		info.Kind = KindUserSchema
		return info
	}

	for _, entry := range layoutDirs {
		prefix := entry.dir + "/"
		if !strings.HasPrefix(rel, prefix) {
			continue
		}
		info.Kind = entry.kind
		info.Name = logicalName(strings.TrimPrefix(rel, prefix))
		if module != "" && info.Name != "" {
			info.Name = "modules/" + module + "/" + info.Name
		}
		break
	}

	if info.Category == Asset {
		info.Kind = KindAsset
	}
	return info
}

// splitAppRoot strips the application root (app/ or
// modules/<name>/public|private/) from p.
func splitAppRoot(p string) (string, string) {
	if rest, ok := strings.CutPrefix(p, "app/"); ok {
		if mod, ok := strings.CutPrefix(rest, "modules/"); ok {
			return splitModule(mod)
		}
		return "", rest
	}
	if rest, ok := strings.CutPrefix(p, "modules/"); ok {
		return splitModule(rest)
	}
	return "", p
}

func splitModule(rest string) (string, string) {
	name, tail, found := strings.Cut(rest, "/")
	if !found {
		return name, ""
	}
	for _, visibility := range []string{"public/", "private/"} {
		if after, ok := strings.CutPrefix(tail, visibility); ok {
			return name, after
		}
	}
	return name, tail
}

// logicalName drops every extension from the last element, so
// "shared/card.html.liquid" becomes "shared/card".
func logicalName(rel string) string {
	dir, file := path.Split(rel)
	if i := strings.IndexByte(file, '.'); i > 0 {
		file = file[:i]
	}
	return dir + file
}

func categoryOf(p string) Category {
	if strings.Contains(p, "/assets/") || strings.HasPrefix(p, "assets/") {
		return Asset
	}

	if lang, safe := enry.GetLanguageByExtension(p); safe {
		if c, ok := languageCategory(lang); ok {
			return c
		}
	}

	// .yml and .html are claimed by several enry languages, so the single
	// answer above is not safe for them.
	candidates := enry.GetLanguagesByExtension(p, nil, nil)
	for _, known := range languageCategories {
		if slices.Contains(candidates, known.lang) {
			return known.category
		}
	}

	if enry.IsVendor(p) || enry.IsImage(p) {
		return Asset
	}
	return Other
}

// languageCategories maps enry language names to categories, in order of
// preference when an extension is ambiguous.
//
//nolint:gochecknoglobals // read-only lookup table
var languageCategories = []struct {
	lang     string
	category Category
}{
	{"Liquid", Liquid},
	{"HTML", HTML},
	{"YAML", YAML},
	{"GraphQL", GraphQL},
}

func languageCategory(lang string) (Category, bool) {
	for _, known := range languageCategories {
		if known.lang == lang {
			return known.category, true
		}
	}
	return "", false
}

// IsAnalyzable reports whether files of category c are parsed and checked.
func IsAnalyzable(c Category) bool {
	switch c {
	case Liquid, HTML, YAML, GraphQL:
		return true
	default:
		return false
	}
}
