// Package checks provides the built-in checks of poscheck.
//
//   - SyntaxError: Liquid that the parser had to recover from
//   - SpaceInsideBraces: one space inside {{ }} and {% %} delimiters (fix)
//   - UnusedAssign: variables assigned but never used (fix)
//   - DeprecatedTag: the include tag, replaced by render (fix)
//   - ParserBlockingJavascript: <script src> without defer or async
//   - ImgWidthAndHeight: <img> without width or height
//   - ValidYaml: YAML files that do not parse
//   - MissingTemplate: references to partials that do not exist
//   - UnusedPartial: partials nothing references
package checks
