package templates

import (
	"text/template"
)

// funcs is available to every template in a registry.
var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}
