package tool

// Each tool server bundles one of the sets below into its registry.

// ImageTools returns the image generation and download tools.
func ImageTools(opts ...ImageToolOption) []Registration {
	return []Registration{
		NewGenerateImageTool(opts...),
		NewDownloadImageTool(opts...),
	}
}

// SearchTools returns the internet search tool.
func SearchTools(opts ...SearchToolOption) []Registration {
	return []Registration{NewSearchInternetTool(opts...)}
}

// WebTools returns the web page content tool.
func WebTools(opts ...WebToolOption) []Registration {
	return []Registration{NewWebContentTool(opts...)}
}

// MustRegisterAll is like RegisterAll but panics on error.
func MustRegisterAll(r *Registry, regs []Registration) {
	if err := RegisterAll(r, regs); err != nil {
		panic(err)
	}
}
