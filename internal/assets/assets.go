package assets

import "embed"

//go:embed all:banner.txt
var bannerFS embed.FS

var BannerString string

func init() {
	bytes, err := bannerFS.ReadFile("banner.txt")
	if err != nil {
		// the banner is embedded at build time, a miss is a broken build
		panic(err)
	}

	BannerString = string(bytes)
}
