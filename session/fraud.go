package session

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"os/user"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HMRC requires every API request to carry fraud-prevention headers
// describing the originating device. Without GDPR consent the headers
// are populated with fixed anonymous values; with consent the real
// device fingerprint is sent.

// deviceNamespace is the UUIDv5 namespace for fraud-prevention device
// identifiers.
var deviceNamespace = uuid.MustParse("c9da8da2-c7e0-4873-97fc-6d783e908751")

const (
	connectionMethod  = "DESKTOP_APP_DIRECT"
	vendorProductName = "go-hmrc-client"
	vendorLicenseIDs  = "hmrc=497427732047504C2C20626974636821"

	anonymousLocalIP = "127.0.0.1"
	anonymousMAC     = "52:54:00:12:34:56"
)

func (s *Session) fraudHeaders() map[string]string {
	now := s.now()
	timestamp := now.UTC().Format("2006-01-02T15:04:05.000Z")

	headers := map[string]string{
		"Gov-Client-Connection-Method": connectionMethod,
		"Gov-Client-Device-ID":         deviceNamespace.String(),
		"Gov-Client-Local-IPs":         anonymousLocalIP,
		"Gov-Client-Local-IPs-Timestamp": timestamp,
		"Gov-Client-MAC-Addresses":     url.QueryEscape(anonymousMAC),
		"Gov-Client-Multi-Factor":      "",
		"Gov-Client-Screens":           "width=1920&height=1080&scaling-factor=1&colour-depth=24",
		"Gov-Client-Timezone":          "UTC+00:00",
		"Gov-Client-User-Agent":        "os-family=Linux&os-version=1&device-manufacturer=Intel&device-model=Computer",
		"Gov-Client-User-IDs":          "os=user",
		"Gov-Client-Window-Size":       "width=640&height=480",
		"Gov-Vendor-License-IDs":       vendorLicenseIDs,
		"Gov-Vendor-Product-Name":      url.QueryEscape(vendorProductName),
		"Gov-Vendor-Version":           vendorProductName + "=" + Version,
	}
	if !s.gdpr {
		return headers
	}

	ips, macs := localAddresses()
	if len(ips) > 0 {
		headers["Gov-Client-Local-IPs"] = strings.Join(ips, ",")
	}
	if len(macs) > 0 {
		joined := strings.Join(macs, ",")
		headers["Gov-Client-MAC-Addresses"] = joined
		headers["Gov-Client-Device-ID"] = uuid.NewSHA1(deviceNamespace, []byte(joined)).String()
	}
	headers["Gov-Client-Timezone"] = timezoneOffset(now)
	headers["Gov-Client-User-Agent"] = deviceUserAgent()
	if u, err := user.Current(); err == nil && u.Username != "" {
		headers["Gov-Client-User-IDs"] = "os=" + url.QueryEscape(u.Username)
	}
	return headers
}

// localAddresses returns the sorted, query-escaped IPv4 addresses and
// MAC addresses of the local network interfaces.
func localAddresses() (ips, macs []string) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil
	}
	for _, iface := range ifaces {
		if mac := iface.HardwareAddr.String(); mac != "" {
			macs = append(macs, url.QueryEscape(mac))
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				ips = append(ips, url.QueryEscape(ip4.String()))
			}
		}
	}
	sort.Strings(ips)
	sort.Strings(macs)
	return ips, macs
}

// timezoneOffset renders the local UTC offset as e.g. "UTC+01:00".
func timezoneOffset(now time.Time) string {
	_, offset := now.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	minutes := offset / 60
	return fmt.Sprintf("UTC%s%02d:%02d", sign, minutes/60, minutes%60)
}

func deviceUserAgent() string {
	return strings.Join([]string{
		"os-family=" + url.QueryEscape(osFamily()),
		"os-version=" + url.QueryEscape(osVersion()),
		"device-manufacturer=" + url.QueryEscape(dmiString("sys_vendor")),
		"device-model=" + url.QueryEscape(dmiString("product_family")),
	}, "&")
}

func osFamily() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	default:
		return runtime.GOOS
	}
}

func osVersion() string {
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "1"
	}
	if version := strings.TrimSpace(string(data)); version != "" {
		return version
	}
	return "1"
}

// dmiString reads a DMI identity file, falling back to "Unknown" on
// platforms without one.
func dmiString(name string) string {
	data, err := os.ReadFile("/sys/devices/virtual/dmi/id/" + name)
	if err != nil {
		return "Unknown"
	}
	if value := strings.TrimSpace(string(data)); value != "" {
		return value
	}
	return "Unknown"
}
