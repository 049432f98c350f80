package checks

import "github.com/yaklabco/poscheck/pkg/check"

// RegisterAll registers every built-in check with registry.
func RegisterAll(registry *check.Registry) {
	registry.Register(func() check.Check { return NewSyntaxError() })
	registry.Register(func() check.Check { return NewSpaceInsideBraces() })
	registry.Register(func() check.Check { return NewUnusedAssign() })
	registry.Register(func() check.Check { return NewDeprecatedTag() })
	registry.Register(func() check.Check { return NewParserBlockingJavascript() })
	registry.Register(func() check.Check { return NewImgWidthAndHeight() })
	registry.Register(func() check.Check { return NewHTMLParsingError() })
	registry.Register(func() check.Check { return NewValidYaml() })
	registry.Register(func() check.Check { return NewMissingTemplate() })
	registry.Register(func() check.Check { return NewUnusedPartial() })
}

// init registers all built-in checks with the default registry.
//
//nolint:gochecknoinits // Init is intentional for automatic check registration
func init() {
	RegisterAll(check.DefaultRegistry)
}
