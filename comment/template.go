package comment

import (
	"regexp"
	"strconv"
)

// Placeholder names bound when rendering line and prompt templates.
const (
	VarFunctionName = "functionName"
	VarDescription  = "description"
	VarType         = "type"
	VarName         = "name"
	VarReturnType   = "returnType"
	VarParamsCount  = "paramsCount"
)

// Vars binds placeholder names to values.
type Vars map[string]string

// {{ name }} and ${ name } are interchangeable.
var placeholderRE = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}|\$\{\s*(\w+)\s*\}`)

// Render substitutes every known placeholder in tmpl. Unknown placeholders
// are left as written.
func Render(tmpl string, vars Vars) string {
	return placeholderRE.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholderRE.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

func baseVars(name string, paramsCount int, returnType, description string) Vars {
	return Vars{
		VarFunctionName: name,
		VarDescription:  description,
		VarType:         "",
		VarName:         "",
		VarReturnType:   returnType,
		VarParamsCount:  strconv.Itoa(paramsCount),
	}
}
