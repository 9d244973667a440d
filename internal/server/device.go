package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"github.com/validateiq/validateiq/internal/store"
)

// parseDevice reads browser, OS and device class from a User-Agent header.
// An empty header yields the zero Device.
func parseDevice(header string) store.Device {
	if header == "" {
		return store.Device{}
	}

	ua := useragent.New(header)
	browser, browserVersion := ua.Browser()
	os := ua.OSInfo()

	return store.Device{
		UserAgent:      header,
		Browser:        browser,
		BrowserVersion: browserVersion,
		OS:             os.Name,
		OSVersion:      os.Version,
		Type:           deviceType(ua, header),
		IsBot:          ua.Bot(),
	}
}

func deviceType(ua *useragent.UserAgent, header string) store.DeviceType {
	tablet := strings.Contains(header, "iPad") || strings.Contains(header, "Tablet") ||
		(strings.Contains(header, "Android") && !strings.Contains(header, "Mobile"))

	switch {
	case ua.Bot():
		return store.DeviceBot
	case tablet:
		return store.DeviceTablet
	case ua.Mobile():
		return store.DeviceMobile
	case ua.OS() != "":
		return store.DeviceDesktop
	default:
		return store.DeviceUnknown
	}
}

// clientIP is the peer address. Behind a trusted proxy middleware.RealIP has
// already replaced it with the first X-Forwarded-For entry.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
