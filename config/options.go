package config

import "github.com/SmiLeXio/Tao/tool"

// FileOptions returns the file tool options for this configuration.
func (c *Config) FileOptions() []tool.FileToolOption {
	opts := []tool.FileToolOption{tool.WithMaxFileSize(c.MaxFileSize)}
	if c.FSRoot != "" {
		opts = append(opts, tool.WithBasePath(c.FSRoot))
	}
	return opts
}

// DocumentOptions returns the document and media tool options.
func (c *Config) DocumentOptions() []tool.DocumentToolOption {
	return []tool.DocumentToolOption{
		tool.WithPandocPath(c.PandocPath),
		tool.WithFFprobePath(c.FFprobePath),
		tool.WithDocumentFileOptions(c.FileOptions()...),
	}
}

// ImageOptions returns the image tool options.
func (c *Config) ImageOptions() []tool.ImageToolOption {
	return []tool.ImageToolOption{
		tool.WithImageAPIKey(c.ImageAPIKey),
		tool.WithImageBaseURL(c.ImageBaseURL),
		tool.WithImageModel(c.ImageModel),
		tool.WithImageFileOptions(c.FileOptions()...),
	}
}

// SearchOptions returns the internet search tool options.
func (c *Config) SearchOptions() []tool.SearchToolOption {
	return []tool.SearchToolOption{
		tool.WithTavilyAPIKey(c.TavilyAPIKey),
		tool.WithTavilyBaseURL(c.TavilyBaseURL),
		tool.WithMaxResults(c.SearchMaxResults),
	}
}

// WebOptions returns the web content tool options.
func (c *Config) WebOptions() []tool.WebToolOption {
	opts := []tool.WebToolOption{
		tool.WithHTTPTimeout(c.WebTimeout),
		tool.WithMaxResponseSize(c.WebMaxResponseSize),
	}
	if len(c.WebAllowedHosts) > 0 {
		opts = append(opts, tool.WithAllowedHosts(c.WebAllowedHosts...))
	}
	if len(c.WebBlockedHosts) > 0 {
		opts = append(opts, tool.WithBlockedHosts(c.WebBlockedHosts...))
	}
	return opts
}
