package markup

import (
	"strings"
)

// Mask blanks out Liquid regions of source while keeping its length and
// line breaks. Regions used as unquoted attribute values are filled with
// 'x' so the attribute keeps a value; all others become spaces.
func Mask(source string) string {
	if !strings.Contains(source, "{{") && !strings.Contains(source, "{%") {
		return source
	}

	out := []byte(source)
	for i := 0; i+1 < len(source); {
		if source[i] != '{' || (source[i+1] != '{' && source[i+1] != '%') {
			i++
			continue
		}

		closer := "}}"
		if source[i+1] == '%' {
			closer = "%}"
		}
		end := strings.Index(source[i+2:], closer)
		if end < 0 {
			end = len(source)
		} else {
			end = i + 2 + end + len(closer)
		}

		fill := byte(' ')
		if i > 0 && source[i-1] == '=' {
			fill = 'x'
		}
		for j := i; j < end; j++ {
			if out[j] != '\n' {
				out[j] = fill
			}
		}
		i = end
	}
	return string(out)
}

// scanAttrs reads the attributes of the start tag at [start,end). Structure
// is taken from the masked text, names and values from the original.
func scanAttrs(masked, src string, start, end int) []Attr {
	var attrs []Attr

	i := start + 1
	for i < end && !isTagSpace(masked[i]) && masked[i] != '/' && masked[i] != '>' {
		i++
	}

	for i < end {
		for i < end && (isTagSpace(masked[i]) || masked[i] == '/') {
			i++
		}
		if i >= end || masked[i] == '>' {
			break
		}

		nameStart := i
		for i < end && !isTagSpace(masked[i]) && masked[i] != '=' && masked[i] != '>' && masked[i] != '/' {
			i++
		}
		attr := Attr{Name: strings.ToLower(src[nameStart:i]), Start: nameStart, End: i}

		j := i
		for j < end && isTagSpace(masked[j]) {
			j++
		}
		if j < end && masked[j] == '=' {
			j++
			for j < end && isTagSpace(masked[j]) {
				j++
			}
			valueStart, valueEnd := j, j
			if j < end && (masked[j] == '"' || masked[j] == '\'') {
				quote := masked[j]
				k := j + 1
				for k < end && masked[k] != quote {
					k++
				}
				valueStart, valueEnd = j+1, k
				j = min(k+1, end)
			} else {
				for j < end && !isTagSpace(masked[j]) && masked[j] != '>' {
					j++
				}
				valueEnd = j
			}
			attr.Value = src[valueStart:valueEnd]
			attr.End = j
			i = j
		}

		if attr.Name != "" {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
