// api/models/visit.go
package models

import (
	"encoding/json"
	"time"
)

type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// UnmarshalJSON normalizes anything that is not a known device class to desktop.
func (d *DeviceClass) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch DeviceClass(s) {
	case DeviceMobile, DeviceTablet, DeviceDesktop:
		*d = DeviceClass(s)
	default:
		*d = DeviceDesktop
	}
	return nil
}

type Browser string

const (
	BrowserChrome  Browser = "Chrome"
	BrowserSafari  Browser = "Safari"
	BrowserFirefox Browser = "Firefox"
	BrowserEdge    Browser = "Edge"
	BrowserOpera   Browser = "Opera"
	BrowserUnknown Browser = "Unknown"
)

func (b *Browser) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Browser(s) {
	case BrowserChrome, BrowserSafari, BrowserFirefox, BrowserEdge, BrowserOpera:
		*b = Browser(s)
	default:
		*b = BrowserUnknown
	}
	return nil
}

type OperatingSystem string

const (
	OSWindows OperatingSystem = "Windows"
	OSMacOS   OperatingSystem = "macOS"
	OSLinux   OperatingSystem = "Linux"
	OSAndroid OperatingSystem = "Android"
	OSIOS     OperatingSystem = "iOS"
	OSUnknown OperatingSystem = "Unknown"
)

func (o *OperatingSystem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch OperatingSystem(s) {
	case OSWindows, OSMacOS, OSLinux, OSAndroid, OSIOS:
		*o = OperatingSystem(s)
	default:
		*o = OSUnknown
	}
	return nil
}

// DirectReferrer is the referrer recorded for visits without one.
const DirectReferrer = "direct"

// VisitRecord is one page view. Records are never modified after they are appended to the log.
type VisitRecord struct {
	SessionID        string          `json:"sessionId"`
	PseudoUserID     string          `json:"pseudoUserId"`
	Timestamp        time.Time       `json:"timestamp"`
	Path             string          `json:"path"`
	Referrer         string          `json:"referrer"`
	DeviceClass      DeviceClass     `json:"deviceClass"`
	BrowserName      Browser         `json:"browserName"`
	OperatingSystem  OperatingSystem `json:"operatingSystem"`
	ScreenResolution string          `json:"screenResolution"`
	Language         string          `json:"language"`
	Country          string          `json:"country,omitempty"`
}

// TrackRequest is what the frontend posts for every page view.
type TrackRequest struct {
	Path         string `json:"path" binding:"required"`
	Referrer     string `json:"referrer"`
	ScreenWidth  int    `json:"screenWidth" binding:"min=0"`
	ScreenHeight int    `json:"screenHeight" binding:"min=0"`
	Language     string `json:"language"`
}

type BreakdownEntry struct {
	Key   string `json:"key"`
	Count uint64 `json:"count"`
}

// Breakdown maps a dimension value to a record count, kept in first-seen order.
type Breakdown []BreakdownEntry

func (b Breakdown) Get(key string) uint64 {
	for _, e := range b {
		if e.Key == key {
			return e.Count
		}
	}
	return 0
}

func (b Breakdown) Keys() []string {
	keys := make([]string, 0, len(b))
	for _, e := range b {
		keys = append(keys, e.Key)
	}
	return keys
}

type TopPathResult struct {
	PagePath string `json:"pagePath"`
	Count    uint64 `json:"count"`
}

// VisitSummary holds every read-side aggregate, computed in a single pass over the log.
type VisitSummary struct {
	UniqueVisitors int             `json:"uniqueVisitors"`
	TotalPageViews int             `json:"totalPageViews"`
	ByDevice       Breakdown       `json:"byDevice"`
	ByBrowser      Breakdown       `json:"byBrowser"`
	ByReferrer     Breakdown       `json:"byReferrer"`
	ByCountry      Breakdown       `json:"byCountry"`
	TopPages       []TopPathResult `json:"topPages"`
}

type CountByTime struct {
	Time  time.Time `json:"time"`
	Count uint64    `json:"count"`
}
