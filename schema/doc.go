// Package schema renders tool parameter lists as JSON Schema objects.
//
// Tools declare their parameters as an ordered []tao.Param. The registry uses
// ForParams to produce the schema advertised to MCP clients:
//
//	params := []tao.Param{
//		{Name: "path", Type: tao.TypeString, Description: "File path", Required: true},
//		{Name: "action", Type: tao.TypeString, Enum: []string{"read", "info"}, Default: "read"},
//	}
//	raw, err := schema.ForParams(params)
//
// ForParams validates the list first: names must be unique, types must be one
// of the tao.Type constants, required parameters cannot carry defaults, and a
// string default must belong to the enum when one is given.
package schema
