package analytics

import (
	"testing"

	"codingcats/api/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUserAgent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		ua      string
		device  models.DeviceClass
		browser models.Browser
		os      models.OperatingSystem
	}{
		{"ipad matches tablet before mobile", iPadUA, models.DeviceTablet, models.BrowserSafari, models.OSIOS},
		{"iphone", iPhoneUA, models.DeviceMobile, models.BrowserSafari, models.OSIOS},
		{"windows chrome", desktopUA, models.DeviceDesktop, models.BrowserChrome, models.OSWindows},
		{
			"android phone",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			models.DeviceMobile, models.BrowserChrome, models.OSAndroid,
		},
		{
			"android tablet without mobile token",
			"Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			models.DeviceTablet, models.BrowserChrome, models.OSAndroid,
		},
		{
			"edge on windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			models.DeviceDesktop, models.BrowserEdge, models.OSWindows,
		},
		{
			"opera on mac",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0",
			models.DeviceDesktop, models.BrowserOpera, models.OSMacOS,
		},
		{
			"firefox on linux",
			"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			models.DeviceDesktop, models.BrowserFirefox, models.OSLinux,
		},
		{
			"chrome on ios",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/120.0.6099.119 Mobile/15E148 Safari/604.1",
			models.DeviceMobile, models.BrowserChrome, models.OSIOS,
		},
		{"empty", "", models.DeviceDesktop, models.BrowserUnknown, models.OSUnknown},
		{"curl", "curl/8.4.0", models.DeviceDesktop, models.BrowserUnknown, models.OSUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			device, browser, osName := ClassifyUserAgent(tc.ua)
			assert.Equal(t, tc.device, device)
			assert.Equal(t, tc.browser, browser)
			assert.Equal(t, tc.os, osName)
		})
	}
}
