// Package tool provides the tool registry, the invocation dispatcher, and
// the built-in tool handlers served by the Tao tool servers.
//
// # Defining Tools
//
// Define tool arguments as a struct with tags, then use Func:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" desc:"City name" required:"true"`
//	    Unit     string `json:"unit" desc:"Temperature unit" enum:"celsius,fahrenheit" default:"celsius"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return lookup(args.Location, args.Unit)
//	        }),
//	)
//
// A handler returns either a string or a []string. Handlers that need the raw
// bound arguments can be registered with WithHandler and an explicit param list.
//
// # Supported Struct Tags
//
//	json:"name"      - Argument name
//	desc:"text"      - Description advertised to the caller
//	required:"true"  - Mark the argument as required
//	default:"value"  - Value used when an optional argument is absent
//	enum:"a,b,c"     - Allowed string values
//
// # Dispatching
//
// A Dispatcher looks up the named tool, binds and coerces the arguments
// against its params, and runs the handler with panic recovery and an
// optional deadline. Dispatch always returns a tao.ToolResult:
//
//	d := tool.NewDispatcher(registry, tool.WithTimeout(5*time.Minute))
//	res := d.Dispatch(ctx, tao.ToolCall{Name: "get_weather", Arguments: args})
//	if res.IsError {
//	    log.Print(res.Error)
//	}
//
// # Tool Sets
//
//   - FileTools(): read_file, write_file, list_directory, search_files
//   - DocumentTools(): process_excel, save_to_excel, convert_document,
//     video_info, parse_xmind, sequential_thinking
//   - ImageTools(): generate_image, download_image
//   - SearchTools(): search_internet
//   - WebTools(): web_content
package tool
