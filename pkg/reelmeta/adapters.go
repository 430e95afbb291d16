package reelmeta

import (
	"github.com/cognicore/reelmeta/pkg/reelmeta/config"
	"github.com/cognicore/reelmeta/pkg/reelmeta/provider"
)

// Adapters builds every known provider from creds. Providers without a
// credential are still returned; they report skipped on each call.
func Adapters(creds config.Credentials, base provider.Config) (images, videos []provider.Adapter) {
	with := func(key string) provider.Config {
		cfg := base
		cfg.Key = key
		cfg.Endpoint = ""
		return cfg
	}
	images = []provider.Adapter{
		provider.NewPixabay(with(creds.PixabayKey)),
		provider.NewPexels(with(creds.PexelsKey)),
		provider.NewUnsplash(with(creds.UnsplashKey)),
	}
	videos = []provider.Adapter{
		provider.NewPixabayVideo(with(creds.PixabayVideoKey)),
		provider.NewPexelsVideo(with(creds.PexelsKey)),
	}
	return images, videos
}
