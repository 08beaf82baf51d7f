package utils

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP resolves client IPs to ISO country codes. A nil *GeoIP resolves nothing.
type GeoIP struct {
	city *geoip2.Reader
}

func NewGeoIP(cityPath string) (*GeoIP, error) {
	cityPath = strings.TrimSpace(cityPath)
	if cityPath == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(cityPath)
	if err != nil {
		return nil, err
	}
	return &GeoIP{city: reader}, nil
}

func (g *GeoIP) Close() error {
	if g == nil || g.city == nil {
		return nil
	}
	return g.city.Close()
}

func (g *GeoIP) Country(ipStr string) string {
	if g == nil || g.city == nil {
		return ""
	}
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return ""
	}
	rec, err := g.city.City(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}
