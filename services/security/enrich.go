package security

import (
	"net"
	"strings"

	"github.com/mileusna/useragent"
)

const unknown = "غير معروف"

// ClientInfo is the descriptive view of a request's origin used for
// notification emphasis. It is advisory only: nothing here gates the
// verification state machine.
type ClientInfo struct {
	IP             string
	Country        string
	City           string
	Browser        string
	BrowserVersion string
	OS             string
	DeviceType     string
	Bot            bool
}

// GeoLookup resolves an IP to country/city strings. Implementations
// call external services; failures must be swallowed and reported as
// unknown so enrichment never aborts a send or verify.
type GeoLookup func(ip string) (country, city string)

// Enrich builds ClientInfo from the request IP and User-Agent. A nil
// lookup, an empty UA or a lookup failure all degrade to neutral
// values.
func Enrich(ip, userAgent string, lookup GeoLookup) ClientInfo {
	info := ClientInfo{
		IP:      ip,
		Country: unknown,
		City:    unknown,
		Browser: unknown,
		OS:      unknown,
	}

	if lookup != nil && ip != "" && !isPrivateIP(ip) {
		if country, city := lookup(ip); country != "" {
			info.Country = country
			if city != "" {
				info.City = city
			}
		}
	}

	if userAgent != "" {
		ua := useragent.Parse(userAgent)
		if ua.Name != "" {
			info.Browser = ua.Name
			info.BrowserVersion = ua.Version
		}
		if ua.OS != "" {
			info.OS = ua.OS
		}
		info.Bot = ua.Bot
		switch {
		case ua.Mobile:
			info.DeviceType = "mobile"
		case ua.Tablet:
			info.DeviceType = "tablet"
		case ua.Desktop:
			info.DeviceType = "desktop"
		}
	}

	return info
}

// Location renders "city, country" for email bodies, collapsing
// unknown halves.
func (c ClientInfo) Location() string {
	switch {
	case c.Country == unknown:
		return unknown
	case c.City == unknown:
		return c.Country
	default:
		return c.City + "، " + c.Country
	}
}

func (c ClientInfo) countryKnown() bool { return c.Country != "" && c.Country != unknown }
func (c ClientInfo) cityKnown() bool    { return c.City != "" && c.City != unknown }
func (c ClientInfo) browserKnown() bool { return c.Browser != "" && c.Browser != unknown }
func (c ClientInfo) osKnown() bool      { return c.OS != "" && c.OS != unknown && c.OS != "Unknown" }

func isPrivateIP(ip string) bool {
	if ip == "127.0.0.1" || strings.HasPrefix(ip, "192.168.") {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified()
}
