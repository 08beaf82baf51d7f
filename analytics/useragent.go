package analytics

import (
	"strings"

	"codingcats/api/models"
)

type uaRule[T any] struct {
	value    T
	contains []string
	unless   []string
}

func (r uaRule[T]) matches(ua string) bool {
	for _, s := range r.unless {
		if strings.Contains(ua, s) {
			return false
		}
	}
	for _, s := range r.contains {
		if strings.Contains(ua, s) {
			return true
		}
	}
	return false
}

func firstMatch[T any](ua string, rules []uaRule[T], fallback T) T {
	for _, r := range rules {
		if r.matches(ua) {
			return r.value
		}
	}
	return fallback
}

// Device rules run against the lower-cased user agent. Tablets come first because most
// tablet user agents also satisfy the loose mobile checks.
var deviceRules = []uaRule[models.DeviceClass]{
	{value: models.DeviceTablet, contains: []string{"ipad", "tablet", "playbook", "silk", "kindle"}},
	{value: models.DeviceTablet, contains: []string{"android"}, unless: []string{"mobile"}},
	{value: models.DeviceMobile, contains: []string{"mobi", "iphone", "ipod", "android", "blackberry", "opera mini", "iemobile"}},
}

var browserRules = []uaRule[models.Browser]{
	{value: models.BrowserEdge, contains: []string{"Edg/", "Edge/", "EdgA/", "EdgiOS/"}},
	{value: models.BrowserOpera, contains: []string{"OPR/", "Opera"}},
	{value: models.BrowserFirefox, contains: []string{"Firefox/", "FxiOS/"}},
	{value: models.BrowserChrome, contains: []string{"Chrome/", "CriOS/", "Chromium/"}},
	{value: models.BrowserSafari, contains: []string{"Safari/"}},
}

// iOS and Android are checked before macOS and Linux since their user agents embed those names.
var osRules = []uaRule[models.OperatingSystem]{
	{value: models.OSWindows, contains: []string{"Windows"}},
	{value: models.OSIOS, contains: []string{"iPhone", "iPad", "iPod"}},
	{value: models.OSMacOS, contains: []string{"Mac OS X", "Macintosh"}},
	{value: models.OSAndroid, contains: []string{"Android"}},
	{value: models.OSLinux, contains: []string{"Linux", "X11"}},
}

func ClassifyDevice(ua string) models.DeviceClass {
	return firstMatch(strings.ToLower(ua), deviceRules, models.DeviceDesktop)
}

func ClassifyBrowser(ua string) models.Browser {
	return firstMatch(ua, browserRules, models.BrowserUnknown)
}

func ClassifyOS(ua string) models.OperatingSystem {
	return firstMatch(ua, osRules, models.OSUnknown)
}

// ClassifyUserAgent derives device class, browser and operating system from a user agent.
// Each dimension is an ordered rule list where the first match wins.
func ClassifyUserAgent(ua string) (models.DeviceClass, models.Browser, models.OperatingSystem) {
	return ClassifyDevice(ua), ClassifyBrowser(ua), ClassifyOS(ua)
}
